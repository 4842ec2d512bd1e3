package reminder

import (
	"strconv"
	"strings"
	"time"
)

const reminderIDPrefix = "r_"

// Reminder is a medication reminder with its daily times. Dates are
// "YYYY-MM-DD" and times "HH:MM" strings, the shapes the mobile client
// sends and renders.
type Reminder struct {
	ID              int64     `json:"-"`
	SuffererID      int64     `json:"-"`
	DisplayID       string    `json:"id"`
	MedicineName    string    `json:"medicineName"`
	MedicineDetails string    `json:"medicineDetails,omitempty"`
	StartDate       string    `json:"startDate"`
	EndDate         string    `json:"endDate"`
	Times           []string  `json:"times"`
	Frequency       string    `json:"frequency"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"-"`
}

// Input is the create/update request body.
type Input struct {
	MedicineName    string   `json:"medicineName"`
	MedicineDetails string   `json:"medicineDetails"`
	StartDate       string   `json:"startDate"`
	EndDate         string   `json:"endDate"`
	Times           []string `json:"times"`
}

// Intake is one recorded dose.
type Intake struct {
	ID         int64     `json:"-"`
	ReminderID int64     `json:"-"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	RecordedAt time.Time `json:"recordedAt"`
}

// IntakeInput is the mark-taken request body.
type IntakeInput struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// ListFilter narrows a reminder listing by date range.
type ListFilter struct {
	StartDate string
	EndDate   string
}

func FormatReminderID(id int64) string {
	return reminderIDPrefix + strconv.FormatInt(id, 10)
}

// ParseReminderID accepts the display form or a bare numeric id.
func ParseReminderID(s string) (int64, error) {
	s = strings.TrimPrefix(s, reminderIDPrefix)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}

// decorate fills the derived response fields.
func (r *Reminder) decorate() {
	r.DisplayID = FormatReminderID(r.ID)
	r.Frequency = "daily"
	r.Status = "active"
	if r.Times == nil {
		r.Times = []string{}
	}
}
