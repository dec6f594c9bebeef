package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/traffic-atlas/pkg/adapters"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type TableConfig struct {
	NameWidth      int
	RequestsWidth  int
	BandwidthWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:      40,
		RequestsWidth:  18,
		BandwidthWidth: 12,
	}
}

type Reporter struct {
	writer  io.Writer
	config  TableConfig
	printer *message.Printer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer:  writer,
		config:  DefaultTableConfig(),
		printer: message.NewPrinter(language.English),
	}
}

// FormatRequests renders a count with thousands separators, e.g. 1,234,567.
func (c *Reporter) FormatRequests(n uint64) string {
	return c.printer.Sprintf("%d", n)
}

// FormatBytes renders a byte count in binary units, e.g. 1.5 KiB.
func FormatBytes(n uint64) string {
	return humanize.IBytes(n)
}

func (c *Reporter) Handle(report *domain.Report, format string) error {
	switch format {
	case "", FormatTable:
		return c.table(report)
	case FormatJSON:
		return c.json(adapters.MapReportDomainToApi(report, false))
	default:
		return fmt.Errorf("unsupported output format %q, expected %s or %s", format, FormatTable, FormatJSON)
	}
}

func (c *Reporter) HandleZones(zones []domain.Zone, format string) error {
	switch format {
	case "", FormatTable:
		for _, z := range zones {
			if _, err := fmt.Fprintf(c.writer, "%-32s  %-*s  %s\n", z.ID, c.config.NameWidth, z.Name, z.Status); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		return c.json(adapters.MapZonesDomainToApi(zones))
	default:
		return fmt.Errorf("unsupported output format %q, expected %s or %s", format, FormatTable, FormatJSON)
	}
}

func (c *Reporter) json(v any) error {
	enc := json.NewEncoder(c.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *Reporter) table(report *domain.Report) error {
	funcMap := template.FuncMap{
		"formatRow": func(name, requests, bandwidth string) string {
			return fmt.Sprintf("| %-*s | %*s | %*s |",
				c.config.NameWidth, name,
				c.config.RequestsWidth, requests,
				c.config.BandwidthWidth, bandwidth)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.RequestsWidth+2),
				strings.Repeat("-", c.config.BandwidthWidth+2))
		},
		"requests":  c.FormatRequests,
		"bandwidth": FormatBytes,
	}

	tmpl := `
Traffic report ({{.Strategy}}, window {{.Window}})
Zones listed: {{len .Zones}}, measured: {{len .Entries}}

{{separator}}
{{formatRow "Zone" "Requests" "Bandwidth"}}
{{separator}}
{{range .Entries}}{{formatRow .ZoneName (requests .Requests) (bandwidth .Bandwidth)}}
{{end}}{{separator}}
{{formatRow "Total" (requests .Totals.Requests) (bandwidth .Totals.Bandwidth)}}
{{separator}}
`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	if report == nil {
		report = &domain.Report{}
	}
	return t.Execute(c.writer, report)
}
