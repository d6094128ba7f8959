package enrichment

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/brokeriq/renewal-monitor/internal/domain"
)

// OverrideRecord is one placement row from the book-of-business export.
// When a record exists for a deal name, its financial columns override
// the CRM deal properties during enrichment.
type OverrideRecord struct {
	Client            string
	ProductLine       string
	CarrierGroup      string
	Specialist        string
	TotalPremium      float64
	CoveragePremium   float64
	CommissionAmount  float64
	PolicyLimit       float64
	CommissionPercent float64
	ExpiryDate        string
}

// LoadOverrides reads the placement export and returns records keyed by
// placement name. A missing file is not an error; enrichment simply
// runs without overrides.
func LoadOverrides(path string) (map[string]OverrideRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening placement export: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing placement export: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		col[strings.TrimSpace(h)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	overrides := make(map[string]OverrideRecord)
	for _, row := range rows[1:] {
		name := field(row, "Placement Name")
		if name == "" {
			continue
		}
		overrides[name] = OverrideRecord{
			Client:            field(row, "Client"),
			ProductLine:       field(row, "Product Line"),
			CarrierGroup:      field(row, "Carrier Group"),
			Specialist:        field(row, "Placement Specialist"),
			TotalPremium:      domain.ParseAmount(field(row, "Total Premium")),
			CoveragePremium:   domain.ParseAmount(field(row, "Coverage Premium Amount")),
			CommissionAmount:  domain.ParseAmount(field(row, "Comission Amount")),
			PolicyLimit:       domain.ParseAmount(field(row, "Limit")),
			CommissionPercent: domain.ParseAmount(field(row, "Comission %")),
			ExpiryDate:        normalizeExportDate(field(row, "Placement Expiry Date")),
		}
	}
	return overrides, nil
}

// normalizeExportDate converts DD/MM/YY and DD/MM/YYYY export dates to
// ISO form. Anything else passes through untouched.
func normalizeExportDate(raw string) string {
	if raw == "" || raw == "-" {
		return ""
	}
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return raw
	}
	d, m, y := parts[0], parts[1], parts[2]
	if len(y) == 2 {
		y = "20" + y
	}
	if len(m) == 1 {
		m = "0" + m
	}
	if len(d) == 1 {
		d = "0" + d
	}
	if _, err := strconv.Atoi(y); err != nil {
		return raw
	}
	return y + "-" + m + "-" + d
}
