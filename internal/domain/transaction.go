package domain

import (
	"fmt"
	"time"
)

// Risk labels assigned per transaction attribute.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Day-period labels accepted in transaction requests.
var DayPeriods = []string{"Morning", "Afternoon", "Evening", "Night", "Late Night"}

// Device categories accepted in transaction requests.
var DeviceCategories = []string{"Mobile Android", "Mobile iOS", "Desktop Windows", "Desktop Mac", "Tablet"}

// Cities the dashboard knows about.
var KnownCities = []string{"Mumbai", "Delhi", "Bangalore", "Hyderabad", "Chennai", "Kolkata", "Pune", "Ahmedabad", "Jaipur"}

// City groupings used by the heuristic scorer. Tier-A cities carry a larger
// score contribution than tier-B, but both map to a Medium location risk.
var (
	HighRiskCitiesA = map[string]bool{"Delhi": true, "Mumbai": true}
	HighRiskCitiesB = map[string]bool{"Kolkata": true, "Jaipur": true}
)

// Transaction is a scored transaction record. Records are created once at
// ingestion and never updated or deleted afterwards.
type Transaction struct {
	ID          string            `json:"id"`
	Amount      float64           `json:"amount"`
	Location    string            `json:"location"`
	TimeOfDay   string            `json:"time"`
	Device      string            `json:"device"`
	FraudScore  int               `json:"fraudScore"`
	RiskFactors map[string]string `json:"riskFactors"`
	Timestamp   time.Time         `json:"timestamp"`
}

// TransactionRequest is the API request payload for transaction scoring.
type TransactionRequest struct {
	Amount    float64 `json:"amount"`
	Location  string  `json:"location"`
	TimeOfDay string  `json:"time"`
	Device    string  `json:"device"`
}

// ValidationError reports a missing or invalid request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// Validate checks that all required fields are present. All four fields must
// be non-empty and the amount positive; the first failure wins.
func (r *TransactionRequest) Validate() error {
	if r.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be a positive number"}
	}
	if r.Location == "" {
		return &ValidationError{Field: "location", Reason: "is required"}
	}
	if r.TimeOfDay == "" {
		return &ValidationError{Field: "time", Reason: "is required"}
	}
	if r.Device == "" {
		return &ValidationError{Field: "device", Reason: "is required"}
	}
	return nil
}

// ToTransaction builds an unscored record from the request. ID, score, risk
// factors, and timestamp are assigned by the ingestion service.
func (r *TransactionRequest) ToTransaction() *Transaction {
	return &Transaction{
		Amount:    r.Amount,
		Location:  r.Location,
		TimeOfDay: r.TimeOfDay,
		Device:    r.Device,
	}
}
