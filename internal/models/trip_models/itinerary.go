package trip_models

import "encoding/json"

// Display labels for the synthetic first and last itinerary entries.
const (
	LabelStart = "start"
	LabelEnd   = "end"
)

// TransportLeg describes the travel that reaches an itinerary item.
type TransportLeg struct {
	Mode       string  `json:"mode"`
	DistanceKm float64 `json:"travel_distance"`
	TravelMin  int     `json:"time"`
	Window     string  `json:"period"` // "HH:MM-HH:MM" spent in transit
}

// ItineraryItem is one scheduled visit plus its inbound travel leg. Items are
// produced by a single strategy run and are the run's sole artifact.
type ItineraryItem struct {
	Step        int             `json:"step"`
	PlaceID     string          `json:"place_id,omitempty"`
	Name        string          `json:"name"`
	Label       string          `json:"label"`
	Hours       *TimeSlot       `json:"hours"` // slot matched at arrival, nil when none
	Lat         float64         `json:"lat"`
	Lon         float64         `json:"lon"`
	Date        string          `json:"date"` // YYYY-MM-DD
	StartTime   string          `json:"start_time"`
	EndTime     string          `json:"end_time"`
	DurationMin int             `json:"duration"`
	Transport   TransportLeg    `json:"transport"`
	RouteInfo   json.RawMessage `json:"route_info,omitempty"`
	RouteURL    string          `json:"route_url,omitempty"`
	Period      string          `json:"period"`
}

func (i ItineraryItem) Coordinate() Coordinate {
	return Coordinate{Lat: i.Lat, Lon: i.Lon}
}
