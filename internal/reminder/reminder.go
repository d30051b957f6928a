// Package reminder turns a dose reminder request into the concrete plan of
// call events and family log entries for one member.
package reminder

import (
	"fmt"
	"time"

	"carecall/internal/models"
	"carecall/internal/schedule"

	"github.com/google/uuid"
)

// Event types emitted in a reminder plan.
const (
	EventReminderCall   = "REMINDER_CALL"
	EventRetryCall      = "RETRY_CALL"
	EventHeadCall       = "HEAD_CALL"
	EventHeadEscalation = "HEAD_ESCALATION"
)

// minutesPerDay is used to derive the informational dose interval.
const minutesPerDay = 24 * 60

// Event is one planned call action.
type Event struct {
	Type          string `json:"type"`
	Target        string `json:"target,omitempty"`
	OffsetMinutes int    `json:"offsetMinutes"`
	Message       string `json:"message"`
}

// Plan is the generated escalation plan plus the log entries to record.
type Plan struct {
	DoseTime        string
	IntervalMinutes int
	Events          []Event
	Logs            []models.LogEntry
}

// policy describes how one age group is reminded. The zero value means a
// single call with no retries and no escalation.
type policy struct {
	// headDirected routes the reminder itself to the heads of family
	// instead of the member.
	headDirected bool

	// retryOffsets are the minutes after the initial call at which the
	// member is retried.
	retryOffsets []int

	// escalateOffset is when the head of family is called about a missed
	// dose; only meaningful when escalate is set.
	escalate       bool
	escalateOffset int
}

// policies is the escalation rule table keyed by age group. Changing the
// reminder behavior for a group means editing this table, not the
// generator.
var policies = map[string]policy{
	models.AgeGroupMinor: {
		headDirected: true,
	},
	models.AgeGroupAdult: {
		retryOffsets:   []int{10, 20},
		escalate:       true,
		escalateOffset: 30,
	},
	models.AgeGroupSenior: {
		retryOffsets:   []int{10, 20},
		escalate:       true,
		escalateOffset: 30,
	},
}

// EffectiveDoseTime picks the dose time for a reminder: the requested time
// when it is well formed, otherwise the first scheduled time, otherwise the
// schedule default.
func EffectiveDoseTime(requested string, med *models.Medication) string {
	if t, ok := schedule.Clean(requested); ok {
		return t
	}
	if len(med.DoseTimes) > 0 {
		return med.DoseTimes[0]
	}
	if med.Time != "" {
		return med.Time
	}
	return schedule.DefaultDoseTime
}

// IntervalMinutes returns the nominal gap between doses for display.
func IntervalMinutes(timesPerDay int) int {
	if timesPerDay < 1 {
		timesPerDay = 1
	}
	return (minutesPerDay + timesPerDay/2) / timesPerDay
}

// BuildPlan generates the events and log entries for reminding one member
// about one medication. heads are the family's heads in order; families
// with more than one head get one extra event and log entry for the backup
// heads, whichever branch ran. All log entries produced by a single call
// share the same timestamp.
func BuildPlan(member *models.Member, med *models.Medication, heads []models.User, requestedDoseTime string, now time.Time) Plan {
	pol := policies[member.AgeGroup]
	doseTime := EffectiveDoseTime(requestedDoseTime, med)

	plan := Plan{
		DoseTime:        doseTime,
		IntervalMinutes: IntervalMinutes(med.TimesPerDay),
	}

	if pol.headDirected {
		plan.Events = append(plan.Events, Event{
			Type:          EventHeadCall,
			Target:        headPhone(heads, 0),
			OffsetMinutes: 0,
			Message:       fmt.Sprintf("Ask head of family to give %s their %s at %s", member.Name, med.Name, doseTime),
		})
		plan.Logs = append(plan.Logs, logEntry(member, models.LogReminderSent,
			fmt.Sprintf("Reminder for %s's %s at %s routed to head of family", member.Name, med.Name, doseTime), now))
	} else {
		plan.Events = append(plan.Events, Event{
			Type:          EventReminderCall,
			Target:        member.Phone,
			OffsetMinutes: 0,
			Message:       fmt.Sprintf("Call %s to take %s %s at %s", member.Name, med.Name, med.Dosage, doseTime),
		})
		for i, offset := range pol.retryOffsets {
			plan.Events = append(plan.Events, Event{
				Type:          EventRetryCall,
				Target:        member.Phone,
				OffsetMinutes: offset,
				Message:       fmt.Sprintf("Retry call to %s for %s, attempt %d", member.Name, med.Name, i+2),
			})
		}

		plan.Logs = append(plan.Logs, logEntry(member, models.LogReminderSent,
			fmt.Sprintf("Reminder call scheduled for %s: %s %s at %s", member.Name, med.Name, med.Dosage, doseTime), now))

		if pol.escalate {
			plan.Events = append(plan.Events, Event{
				Type:          EventHeadEscalation,
				Target:        headPhone(heads, 0),
				OffsetMinutes: pol.escalateOffset,
				Message:       fmt.Sprintf("Notify head of family if %s misses %s", member.Name, med.Name),
			})
			plan.Logs = append(plan.Logs, logEntry(member, models.LogEscalation,
				fmt.Sprintf("Missed-dose escalation armed for %s, head of family will be called", member.Name), now))
		}
	}

	if len(heads) > 1 {
		plan.Events = append(plan.Events, Event{
			Type:          EventHeadEscalation,
			Target:        headPhone(heads, 1),
			OffsetMinutes: pol.escalateOffset,
			Message:       fmt.Sprintf("Backup heads of family will also be tried for %s", member.Name),
		})
		plan.Logs = append(plan.Logs, logEntry(member, models.LogEscalation,
			fmt.Sprintf("Backup heads of family will also be notified about %s", member.Name), now))
	}

	return plan
}

// HeadPhones lists the phone numbers of the family heads, skipping users
// without one.
func HeadPhones(heads []models.User) []string {
	out := make([]string, 0, len(heads))
	for _, h := range heads {
		if h.Phone != "" {
			out = append(out, h.Phone)
		}
	}
	return out
}

func headPhone(heads []models.User, i int) string {
	if i < len(heads) {
		return heads[i].Phone
	}
	return ""
}

func logEntry(member *models.Member, logType, message string, now time.Time) models.LogEntry {
	return models.LogEntry{
		ID:        uuid.New().String(),
		FamilyID:  member.FamilyID,
		MemberID:  member.ID,
		Type:      logType,
		Message:   message,
		Timestamp: now,
	}
}
