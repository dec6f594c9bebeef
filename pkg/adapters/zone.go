package adapters

import (
	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

func MapZoneDomainToApi(z domain.Zone) api.Zone {
	return api.Zone{
		ID:     z.ID,
		Name:   z.Name,
		Status: z.Status,
	}
}

func MapZonesDomainToApi(zones []domain.Zone) []api.Zone {
	out := make([]api.Zone, 0, len(zones))
	for _, z := range zones {
		out = append(out, MapZoneDomainToApi(z))
	}
	return out
}
