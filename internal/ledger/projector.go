package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"groupstay/pkg/model"
)

const reportTitlePrefix = "Event Inventory Report for "

// Summarize aggregates capacity per kind. Every kind is present, with zero
// totals when the scope has no pool of that kind.
func Summarize(pools []model.Pool) map[model.Kind]model.KindSummary {
	out := make(map[model.Kind]model.KindSummary, len(kindTable))
	for _, s := range kindTable {
		out[s.kind] = model.KindSummary{}
	}
	for _, p := range pools {
		sum, ok := out[p.Kind]
		if !ok {
			continue
		}
		sum.Pools++
		sum.Total += p.Capacity
		sum.Used += p.Used
		sum.Available += p.Available
		out[p.Kind] = sum
	}
	return out
}

// OccupancyRates returns round(used/total*100) per kind, 0 for kinds without
// capacity.
func OccupancyRates(pools []model.Pool) map[model.Kind]int {
	summary := Summarize(pools)
	out := make(map[model.Kind]int, len(summary))
	for k, s := range summary {
		if s.Total == 0 {
			out[k] = 0
			continue
		}
		out[k] = int(math.Round(float64(s.Used) * 100 / float64(s.Total)))
	}
	return out
}

// Row is one pool line of the delimited report.
type Row struct {
	Kind      model.Kind
	Label     string
	Capacity  int
	Used      int
	Available int
}

// ToDelimitedText renders the comma separated inventory report: a title and
// timestamp header, then one section per kind with a column line and a row
// per pool.
func ToDelimitedText(scope model.Scope, pools []model.Pool, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	blank := func() {
		w.Flush()
		buf.WriteByte('\n')
	}

	if err := w.Write([]string{reportTitlePrefix + scope.Name}); err != nil {
		return "", err
	}
	if err := w.Write([]string{"Generated: " + generatedAt.UTC().Format(time.RFC3339)}); err != nil {
		return "", err
	}

	for _, s := range kindTable {
		blank()
		if err := w.Write([]string{s.section}); err != nil {
			return "", err
		}
		if err := w.Write(s.columns()); err != nil {
			return "", err
		}
		for _, p := range pools {
			if p.Kind != s.kind {
				continue
			}
			record := []string{
				p.Label,
				strconv.Itoa(p.Capacity),
				strconv.Itoa(p.Used),
				strconv.Itoa(p.Available),
			}
			if err := w.Write(record); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseDelimitedText reads a report produced by ToDelimitedText back into
// rows, in report order.
func ParseDelimitedText(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var (
		rows    []Row
		current *kindSpec
		line    int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		line++

		if len(record) == 1 {
			field := record[0]
			if line <= 2 && (strings.HasPrefix(field, reportTitlePrefix) || strings.HasPrefix(field, "Generated: ")) {
				continue
			}
			spec, ok := sectionSpec(field)
			if !ok {
				return nil, validationf("line %d: unknown section %q", line, field)
			}
			current = &spec
			continue
		}

		if current == nil {
			return nil, validationf("line %d: row outside of a section", line)
		}
		if len(record) != 4 {
			return nil, validationf("line %d: expected 4 columns, got %d", line, len(record))
		}
		if equalColumns(record, current.columns()) {
			continue
		}

		row, err := parseRow(current.kind, record)
		if err != nil {
			return nil, validationf("line %d: %v", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func sectionSpec(section string) (kindSpec, bool) {
	for _, s := range kindTable {
		if s.section == section {
			return s, true
		}
	}
	return kindSpec{}, false
}

func equalColumns(record, columns []string) bool {
	for i := range columns {
		if record[i] != columns[i] {
			return false
		}
	}
	return true
}

func parseRow(kind model.Kind, record []string) (Row, error) {
	nums := make([]int, 3)
	for i, field := range record[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return Row{}, fmt.Errorf("column %d is not an integer: %q", i+2, field)
		}
		nums[i] = n
	}
	row := Row{Kind: kind, Label: record[0], Capacity: nums[0], Used: nums[1], Available: nums[2]}
	if row.Capacity > MaxCapacity {
		return Row{}, fmt.Errorf("capacity %d exceeds %d", row.Capacity, MaxCapacity)
	}
	if row.Capacity < 0 || row.Used < 0 || row.Used > row.Capacity || row.Used+row.Available != row.Capacity {
		return Row{}, fmt.Errorf("inconsistent counts %d/%d/%d", row.Capacity, row.Used, row.Available)
	}
	return row, nil
}

var guestColumns = []string{
	"ID", "Name", "Email", "Phone", "Room Preference",
	"Dietary Requirements", "Special Needs",
	"Wheelchair Accessible", "Mobility Assistance",
	"High Floor", "Ground Floor", "Quiet Room", "Notes",
}

// GuestsCSV renders the guest list export.
func GuestsCSV(guests []model.Guest) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(guestColumns); err != nil {
		return "", err
	}
	for _, g := range guests {
		record := []string{
			strconv.FormatInt(g.ID, 10),
			g.Name,
			g.Email,
			g.Phone,
			g.RoomPreference,
			strings.Join(g.DietaryRequirements, "; "),
			strings.Join(g.SpecialNeeds, "; "),
			yesNo(g.WheelchairAccessible),
			yesNo(g.MobilityAssistance),
			yesNo(g.HighFloor),
			yesNo(g.GroundFloor),
			yesNo(g.QuietRoom),
			g.Notes,
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
