package ledger

import (
	"fmt"

	"groupstay/pkg/model"
)

// kindSpec holds everything that differs between pool kinds. Adding a kind
// means adding a row here, nothing else.
type kindSpec struct {
	kind     model.Kind
	resource string

	section       string
	labelHeader   string
	capacityLabel string
	usedLabel     string

	criticalTitle string
	criticalMsg   string

	// warningTitle is empty for kinds that only raise critical alerts.
	warningTitle string
	warningMsg   string
}

var kindTable = []kindSpec{
	{
		kind:          model.KindRoom,
		resource:      "rooms",
		section:       "ROOMS",
		labelHeader:   "Type",
		capacityLabel: "Quantity",
		usedLabel:     "Booked",
		criticalTitle: "Room Availability Critical",
		criticalMsg:   "%s rooms almost full (%d left)",
		warningTitle:  "Room Availability Low",
		warningMsg:    "%s rooms getting booked (%d left)",
	},
	{
		kind:          model.KindTransport,
		resource:      "transport",
		section:       "TRANSPORT",
		labelHeader:   "Type",
		capacityLabel: "Capacity",
		usedLabel:     "Reserved",
		criticalTitle: "Transport Capacity Critical",
		criticalMsg:   "%s almost full (%d seats left)",
	},
	{
		kind:          model.KindDining,
		resource:      "dining",
		section:       "DINING",
		labelHeader:   "Meal Type",
		capacityLabel: "Capacity",
		usedLabel:     "Booked",
		criticalTitle: "Dining Reservation Critical",
		criticalMsg:   "%s almost fully booked (%d seats left)",
	},
	{
		kind:          model.KindActivity,
		resource:      "activities",
		section:       "ACTIVITIES",
		labelHeader:   "Name",
		capacityLabel: "Capacity",
		usedLabel:     "Registered",
		criticalTitle: "Activity Slots Full",
		criticalMsg:   "%s almost fully registered (%d slots left)",
	},
}

func specFor(k model.Kind) (kindSpec, bool) {
	for _, s := range kindTable {
		if s.kind == k {
			return s, true
		}
	}
	return kindSpec{}, false
}

func (s kindSpec) columns() []string {
	return []string{s.labelHeader, s.capacityLabel, s.usedLabel, "Available"}
}

func (s kindSpec) critical(p model.Pool) model.Alert {
	return s.alert(p, model.AlertCapacityCritical, s.criticalTitle, s.criticalMsg)
}

func (s kindSpec) warning(p model.Pool) model.Alert {
	return s.alert(p, model.AlertCapacityWarning, s.warningTitle, s.warningMsg)
}

func (s kindSpec) alert(p model.Pool, typ model.AlertType, title, format string) model.Alert {
	return model.Alert{
		ID:         s.resource + "_" + p.ID,
		Type:       typ,
		Title:      title,
		Message:    fmt.Sprintf(format, p.Label, p.Available),
		Resource:   s.resource,
		ResourceID: p.ID,
	}
}
