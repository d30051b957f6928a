package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"carecall/internal/dispatch"
	"carecall/internal/models"
	"carecall/internal/notify"
	"carecall/internal/phone"
	"carecall/internal/reminder"
	"carecall/internal/schedule"
	"carecall/internal/store"
	"carecall/internal/telephony"
	"carecall/internal/validation"

	"github.com/google/uuid"
)

// LowSupplyThreshold is the dose count at or under which a medication
// counts as running low. The warning fires once, when supply crosses the
// threshold, not on every consume below it.
const LowSupplyThreshold = 5

var (
	ErrFamilyNotFound     = errors.New("family not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrMedicationNotFound = errors.New("medication not found")
)

// FamilyService handles members, medications, logs and reminders for one
// family partition.
type FamilyService struct {
	store      *store.Store
	voice      *telephony.Client
	dispatcher *dispatch.Dispatcher
	emails     *notify.EmailService
}

// NewFamilyService creates a new family service. voice, dispatcher and
// emails may be nil; the matching side effects are then skipped.
func NewFamilyService(st *store.Store, voice *telephony.Client, dispatcher *dispatch.Dispatcher, emails *notify.EmailService) *FamilyService {
	return &FamilyService{
		store:      st,
		voice:      voice,
		dispatcher: dispatcher,
		emails:     emails,
	}
}

// MedicationInput is the medication shape accepted on member create and
// update. Pointer fields distinguish absent from zero.
type MedicationInput struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Dosage       string   `json:"dosage"`
	TimesPerDay  *int     `json:"timesPerDay,omitempty"`
	DoseTimes    []string `json:"doseTimes,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Supply       *int     `json:"supply,omitempty"`
	Time         string   `json:"time,omitempty"`
}

// MemberInput is the member shape accepted on create and update.
type MemberInput struct {
	Name        string            `json:"name"`
	AgeGroup    string            `json:"ageGroup"`
	Phone       string            `json:"phone"`
	Medications []MedicationInput `json:"medications"`
}

func validateMemberInput(input MemberInput) error {
	if err := validation.ValidateName(input.Name); err != nil {
		return err
	}
	if err := validation.ValidateAgeGroup(input.AgeGroup); err != nil {
		return err
	}
	for _, med := range input.Medications {
		if strings.TrimSpace(med.Name) == "" {
			return validation.ValidationError{Field: "medications", Message: "medication name is required"}
		}
	}
	return nil
}

// Members returns the family's members.
func (s *FamilyService) Members(familyID string) ([]models.Member, error) {
	var members []models.Member
	err := s.store.View(func(doc *models.Document) error {
		if doc.FamilyByID(familyID) == nil {
			return ErrFamilyNotFound
		}
		members = doc.FamilyMembers(familyID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []models.Member{}
	}
	return members, nil
}

// CreateMember adds a member with normalized phone and dose schedules.
func (s *FamilyService) CreateMember(familyID string, input MemberInput) (*models.Member, error) {
	if err := validateMemberInput(input); err != nil {
		return nil, err
	}

	member := models.Member{
		ID:          uuid.New().String(),
		FamilyID:    familyID,
		Name:        strings.TrimSpace(input.Name),
		AgeGroup:    input.AgeGroup,
		Phone:       phone.Normalize(input.Phone),
		Medications: make([]models.Medication, 0, len(input.Medications)),
	}
	now := time.Now()
	for _, medInput := range input.Medications {
		member.Medications = append(member.Medications, newMedication(medInput, now))
	}

	err := s.store.Update(func(doc *models.Document) error {
		if doc.FamilyByID(familyID) == nil {
			return ErrFamilyNotFound
		}
		doc.Members = append(doc.Members, member)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := member.Clone()
	return &result, nil
}

// UpdateMember replaces a member's profile and medication list. Input
// medications carrying the id of a stored medication keep its supply
// counters and creation time; a nil medications list leaves the stored
// list alone.
func (s *FamilyService) UpdateMember(familyID, memberID string, input MemberInput) (*models.Member, error) {
	if err := validateMemberInput(input); err != nil {
		return nil, err
	}

	var updated models.Member
	err := s.store.Update(func(doc *models.Document) error {
		if doc.FamilyByID(familyID) == nil {
			return ErrFamilyNotFound
		}
		member := doc.FamilyMember(familyID, memberID)
		if member == nil {
			return ErrMemberNotFound
		}

		member.Name = strings.TrimSpace(input.Name)
		member.AgeGroup = input.AgeGroup
		member.Phone = phone.Normalize(input.Phone)

		if input.Medications != nil {
			now := time.Now()
			meds := make([]models.Medication, 0, len(input.Medications))
			for _, medInput := range input.Medications {
				if existing := member.MedicationByID(medInput.ID); existing != nil {
					meds = append(meds, mergeMedication(*existing, medInput))
				} else {
					meds = append(meds, newMedication(medInput, now))
				}
			}
			member.Medications = meds
		}

		updated = member.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// newMedication builds a stored medication from input, normalizing the
// schedule with no previous values to fall back on.
func newMedication(input MedicationInput, now time.Time) models.Medication {
	requested := input.DoseTimes
	if len(requested) == 0 && input.Time != "" {
		requested = []string{input.Time}
	}

	timesPerDay := 0
	if input.TimesPerDay != nil {
		timesPerDay = *input.TimesPerDay
	}
	count, times := schedule.Normalize(timesPerDay, requested, nil)

	supply := 0
	if input.Supply != nil && *input.Supply > 0 {
		supply = *input.Supply
	}

	return models.Medication{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(input.Name),
		Dosage:       strings.TrimSpace(input.Dosage),
		TimesPerDay:  count,
		DoseTimes:    times,
		Instructions: strings.TrimSpace(input.Instructions),
		Supply:       supply,
		CreatedAt:    now,
	}
}

// mergeMedication applies input onto a stored medication, normalizing the
// schedule against the stored one and keeping the consumption counters.
func mergeMedication(existing models.Medication, input MedicationInput) models.Medication {
	timesPerDay := existing.TimesPerDay
	if input.TimesPerDay != nil {
		timesPerDay = *input.TimesPerDay
	}

	previous := schedule.Backfill(existing.DoseTimes, existing.Time)
	count, times := schedule.Normalize(timesPerDay, input.DoseTimes, previous)

	existing.Name = strings.TrimSpace(input.Name)
	existing.Dosage = strings.TrimSpace(input.Dosage)
	existing.Instructions = strings.TrimSpace(input.Instructions)
	existing.TimesPerDay = count
	existing.DoseTimes = times
	// The scalar time field is legacy; once a schedule exists it goes away.
	existing.Time = ""
	if input.Supply != nil {
		existing.Supply = *input.Supply
		if existing.Supply < 0 {
			existing.Supply = 0
		}
	}
	return existing
}

// ConsumeResult reports a medication's counters after a consume.
type ConsumeResult struct {
	MemberID      string   `json:"memberId"`
	MedID         string   `json:"medId"`
	Supply        int      `json:"supply"`
	ConsumedCount int      `json:"consumedCount"`
	TimesPerDay   int      `json:"timesPerDay"`
	DoseTimes     []string `json:"doseTimes"`
}

// Consume adjusts a medication's supply. A nil change means one dose was
// taken. Supply never goes below zero and only negative changes count as
// consumption. Crossing the low-supply threshold appends one warning log
// and kicks off the purchase reminder in the background.
func (s *FamilyService) Consume(familyID, memberID, medID string, change *int) (*ConsumeResult, error) {
	delta := -1
	if change != nil {
		delta = *change
	}

	var (
		result     ConsumeResult
		crossed    bool
		memberSnap models.Member
		medSnap    models.Medication
		headPhones []string
	)
	err := s.store.Update(func(doc *models.Document) error {
		family := doc.FamilyByID(familyID)
		if family == nil {
			return ErrFamilyNotFound
		}
		member := doc.FamilyMember(familyID, memberID)
		if member == nil {
			return ErrMemberNotFound
		}
		med := member.MedicationByID(medID)
		if med == nil {
			return ErrMedicationNotFound
		}

		newSupply := med.Supply + delta
		if newSupply < 0 {
			newSupply = 0
		}
		crossed = med.Supply > LowSupplyThreshold && newSupply <= LowSupplyThreshold
		med.Supply = newSupply
		if delta < 0 {
			med.ConsumedCount += -delta
		}

		now := time.Now()
		if delta < 0 {
			prependLog(doc, models.LogEntry{
				ID:        uuid.New().String(),
				FamilyID:  familyID,
				MemberID:  memberID,
				Type:      models.LogDoseTaken,
				Message:   fmt.Sprintf("%s took %s, %d doses left", member.Name, med.Name, med.Supply),
				Timestamp: now,
			})
		} else {
			prependLog(doc, models.LogEntry{
				ID:        uuid.New().String(),
				FamilyID:  familyID,
				MemberID:  memberID,
				Type:      models.LogSupplyUpdated,
				Message:   fmt.Sprintf("Supply of %s for %s updated to %d doses", med.Name, member.Name, med.Supply),
				Timestamp: now,
			})
		}
		if crossed {
			prependLog(doc, models.LogEntry{
				ID:        uuid.New().String(),
				FamilyID:  familyID,
				MemberID:  memberID,
				Type:      models.LogLowSupply,
				Message:   fmt.Sprintf("%s is running low on %s: %d doses left", member.Name, med.Name, med.Supply),
				Timestamp: now,
			})
			memberSnap = member.Clone()
			medSnap = med.Clone()
			headPhones = headPhonesOf(doc, family)
		}

		result = ConsumeResult{
			MemberID:      memberID,
			MedID:         medID,
			Supply:        med.Supply,
			ConsumedCount: med.ConsumedCount,
			TimesPerDay:   med.TimesPerDay,
			DoseTimes:     append([]string(nil), med.DoseTimes...),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if crossed {
		s.dispatchLowSupply(memberSnap, medSnap, headPhones)
	}
	return &result, nil
}

// LogInput carries a caller-supplied family log entry.
type LogInput struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	MemberID string `json:"memberId,omitempty"`
}

// Logs returns the family's log entries, newest first.
func (s *FamilyService) Logs(familyID string) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := s.store.View(func(doc *models.Document) error {
		if doc.FamilyByID(familyID) == nil {
			return ErrFamilyNotFound
		}
		entries = doc.FamilyLogs(familyID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if entries == nil {
		entries = []models.LogEntry{}
	}
	return entries, nil
}

// AppendLog records a caller-supplied log entry for the family. Message is
// required; type is free-form metadata and may be empty.
func (s *FamilyService) AppendLog(familyID string, input LogInput) (*models.LogEntry, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, validation.ValidationError{Field: "message", Message: "message is required"}
	}
	if input.Type != "" {
		if err := validation.ValidateLogType(input.Type); err != nil {
			return nil, err
		}
	}

	entry := models.LogEntry{
		ID:        uuid.New().String(),
		FamilyID:  familyID,
		MemberID:  input.MemberID,
		Type:      strings.TrimSpace(input.Type),
		Message:   input.Message,
		Timestamp: time.Now(),
	}

	err := s.store.Update(func(doc *models.Document) error {
		if doc.FamilyByID(familyID) == nil {
			return ErrFamilyNotFound
		}
		if input.MemberID != "" && doc.FamilyMember(familyID, input.MemberID) == nil {
			return ErrMemberNotFound
		}
		prependLog(doc, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ReminderMember is the member summary returned by a reminder trigger.
type ReminderMember struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AgeGroup string `json:"ageGroup"`
	Phone    string `json:"phone,omitempty"`
}

// ReminderMedication is the medication summary returned by a reminder
// trigger.
type ReminderMedication struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Instructions string `json:"instructions,omitempty"`
}

// ReminderResult is the response to a reminder trigger.
type ReminderResult struct {
	Member          ReminderMember     `json:"member"`
	Medication      ReminderMedication `json:"medication"`
	DoseTime        string             `json:"doseTime"`
	IntervalMinutes int                `json:"intervalMinutes"`
	Events          []reminder.Event   `json:"events"`
}

// TriggerReminder generates the escalation plan for one dose, records its
// log entries and asks the voice service for the call in the background.
func (s *FamilyService) TriggerReminder(familyID, memberID, medID, doseTime string) (*ReminderResult, error) {
	var (
		result     ReminderResult
		memberSnap models.Member
		medSnap    models.Medication
		headPhones []string
	)
	err := s.store.Update(func(doc *models.Document) error {
		family := doc.FamilyByID(familyID)
		if family == nil {
			return ErrFamilyNotFound
		}
		member := doc.FamilyMember(familyID, memberID)
		if member == nil {
			return ErrMemberNotFound
		}
		med := member.MedicationByID(medID)
		if med == nil {
			return ErrMedicationNotFound
		}

		// Migrate a legacy scalar schedule the first time it is needed.
		if len(med.DoseTimes) == 0 {
			count, times := schedule.Normalize(med.TimesPerDay, nil, schedule.Backfill(nil, med.Time))
			med.TimesPerDay = count
			med.DoseTimes = times
			med.Time = ""
		}

		heads := headsOf(doc, family)
		plan := reminder.BuildPlan(member, med, heads, doseTime, time.Now())
		doc.Logs = append(append([]models.LogEntry{}, plan.Logs...), doc.Logs...)

		result = ReminderResult{
			Member: ReminderMember{
				ID:       member.ID,
				Name:     member.Name,
				AgeGroup: member.AgeGroup,
				Phone:    member.Phone,
			},
			Medication: ReminderMedication{
				ID:           med.ID,
				Name:         med.Name,
				Dosage:       med.Dosage,
				Instructions: med.Instructions,
			},
			DoseTime:        plan.DoseTime,
			IntervalMinutes: plan.IntervalMinutes,
			Events:          plan.Events,
		}
		memberSnap = member.Clone()
		medSnap = med.Clone()
		headPhones = reminder.HeadPhones(heads)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatchReminderCall(memberSnap, medSnap, result.DoseTime, headPhones)
	return &result, nil
}

func (s *FamilyService) dispatchReminderCall(member models.Member, med models.Medication, doseTime string, headPhones []string) {
	if s.dispatcher == nil || s.voice == nil || !s.voice.IsEnabled() {
		return
	}

	req := telephony.CallReminderRequest{
		PhoneNumber: member.Phone,
		UserName:    member.Name,
		UserType:    telephony.UserTypeFor(member.AgeGroup),
		Medicine: telephony.MedicineInfo{
			Name:         med.Name,
			Dosage:       med.Dosage,
			NextDoseTime: doseTime,
			Instructions: med.Instructions,
		},
		HeadOfFamilyPhones: headPhones,
	}
	s.dispatcher.Submit("call-reminder", func(ctx context.Context) error {
		_, err := s.voice.CallReminder(ctx, req)
		return err
	})
}

func (s *FamilyService) dispatchLowSupply(member models.Member, med models.Medication, headPhones []string) {
	if s.dispatcher == nil {
		return
	}

	timesPerDay := med.TimesPerDay
	if timesPerDay < 1 {
		timesPerDay = 1
	}
	daysLeft := med.Supply / timesPerDay

	if s.voice != nil && s.voice.IsEnabled() {
		req := telephony.CallBuyRequest{
			CallReminderRequest: telephony.CallReminderRequest{
				PhoneNumber: member.Phone,
				UserName:    member.Name,
				UserType:    telephony.UserTypeFor(member.AgeGroup),
				Medicine: telephony.MedicineInfo{
					Name:         med.Name,
					Dosage:       med.Dosage,
					NextDoseTime: reminder.EffectiveDoseTime("", &med),
					Instructions: med.Instructions,
				},
				HeadOfFamilyPhones: headPhones,
			},
			RemainingCount: med.Supply,
			DaysSupplyLeft: daysLeft,
		}
		s.dispatcher.Submit("call-buy", func(ctx context.Context) error {
			_, err := s.voice.CallBuy(ctx, req)
			return err
		})
	}

	if s.emails != nil && s.emails.IsEnabled() {
		memberName, medName, dosage := member.Name, med.Name, med.Dosage
		remaining := med.Supply
		s.dispatcher.Submit("low-supply-email", func(ctx context.Context) error {
			return s.emails.SendLowSupplyAlert(ctx, memberName, medName, dosage, remaining, daysLeft)
		})
	}
}

// prependLog inserts an entry at the front, keeping the newest-first
// insertion order of the document's log list.
func prependLog(doc *models.Document, entry models.LogEntry) {
	doc.Logs = append([]models.LogEntry{entry}, doc.Logs...)
}

// headsOf resolves the family's head users in headIds order.
func headsOf(doc *models.Document, family *models.Family) []models.User {
	heads := make([]models.User, 0, len(family.HeadIDs))
	for _, id := range family.HeadIDs {
		if u := doc.UserByID(id); u != nil {
			heads = append(heads, *u)
		}
	}
	return heads
}

func headPhonesOf(doc *models.Document, family *models.Family) []string {
	return reminder.HeadPhones(headsOf(doc, family))
}
