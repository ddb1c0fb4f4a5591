package application

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status: этап отклика на вакансию.
type Status string

const (
	StatusSaved     Status = "saved"
	StatusApplied   Status = "applied"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

var allStatuses = []Status{StatusSaved, StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn}

// transitions задаёт допустимые переходы; rejected и withdrawn финальные.
var transitions = map[Status][]Status{
	StatusSaved:     {StatusApplied, StatusWithdrawn},
	StatusApplied:   {StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn},
	StatusInterview: {StatusOffer, StatusRejected, StatusWithdrawn},
	StatusOffer:     {StatusWithdrawn},
}

// ParseStatus принимает статус в любом регистре.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, x := range allStatuses {
		if x == st {
			return st, true
		}
	}
	return "", false
}

// CanTransition проверяет переход from -> to. Тот же статус разрешён всегда
// (обновление заметок).
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Active: отклик ещё в работе.
func (s Status) Active() bool {
	return s == StatusSaved || s == StatusApplied || s == StatusInterview
}

// OfferStatus: решение по офферу.
type OfferStatus string

const (
	OfferActive   OfferStatus = "active"
	OfferAccepted OfferStatus = "accepted"
	OfferDeclined OfferStatus = "declined"
)

// Offer описывает предложение работодателя по отклику.
type Offer struct {
	BaseSalary   float64     `json:"base_salary,omitempty"`
	Bonus        float64     `json:"bonus,omitempty"`
	Currency     string      `json:"currency,omitempty"`
	Benefits     string      `json:"benefits,omitempty"`
	RemotePolicy string      `json:"remote_policy,omitempty"`
	Deadline     *time.Time  `json:"deadline,omitempty"`
	Status       OfferStatus `json:"status"`
	Notes        string      `json:"notes,omitempty"`
	ReceivedAt   time.Time   `json:"received_at"`
}

// Application описывает отслеживаемый отклик, ключ: URL вакансии.
type Application struct {
	ID        uuid.UUID  `json:"id"`
	JobURL    string     `json:"job_url"`
	Title     string     `json:"title"`
	Company   string     `json:"company"`
	Location  string     `json:"location,omitempty"`
	Salary    string     `json:"salary,omitempty"`
	Source    string     `json:"source,omitempty"`
	Status    Status     `json:"status"`
	Priority  int        `json:"priority"`
	Notes     string     `json:"notes,omitempty"`
	Offer     *Offer     `json:"offer,omitempty"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IgnoredJob: вакансия, скрытая владельцем из выдачи.
type IgnoredJob struct {
	JobURL    string    `json:"job_url"`
	Reason    string    `json:"reason,omitempty"`
	IgnoredAt time.Time `json:"ignored_at"`
}

const (
	minPriority     = 1
	maxPriority     = 5
	defaultPriority = 3
)

func normalizePriority(p int) int {
	switch {
	case p == 0:
		return defaultPriority
	case p < minPriority:
		return minPriority
	case p > maxPriority:
		return maxPriority
	}
	return p
}
