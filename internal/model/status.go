package model

import (
	"math"
	"strings"
)

type ContractStatus string

const (
	ContractDraft      ContractStatus = "draft"
	ContractActive     ContractStatus = "active"
	ContractCompleted  ContractStatus = "completed"
	ContractTerminated ContractStatus = "terminated"
	ContractExpired    ContractStatus = "expired"
	ContractPending    ContractStatus = "pending"
	ContractCancelled  ContractStatus = "cancelled"
)

type MilestoneStatus string

const (
	MilestoneNotStarted      MilestoneStatus = "not_started"
	MilestoneInProgress      MilestoneStatus = "in_progress"
	MilestonePendingReview   MilestoneStatus = "pending_review"
	MilestoneReadyForPayment MilestoneStatus = "ready_for_payment"
	MilestoneCompleted       MilestoneStatus = "completed"
	MilestonePending         MilestoneStatus = "pending"
	MilestoneFailed          MilestoneStatus = "failed"
	MilestonePaid            MilestoneStatus = "paid"
	MilestoneOverdue         MilestoneStatus = "overdue"
)

var contractStatuses = map[ContractStatus]bool{
	ContractDraft:      true,
	ContractActive:     true,
	ContractCompleted:  true,
	ContractTerminated: true,
	ContractExpired:    true,
	ContractPending:    true,
	ContractCancelled:  true,
}

var milestoneStatuses = map[MilestoneStatus]bool{
	MilestoneNotStarted:      true,
	MilestoneInProgress:      true,
	MilestonePendingReview:   true,
	MilestoneReadyForPayment: true,
	MilestoneCompleted:       true,
	MilestonePending:         true,
	MilestoneFailed:          true,
	MilestonePaid:            true,
	MilestoneOverdue:         true,
}

func ValidContractStatus(s ContractStatus) bool   { return contractStatuses[s] }
func ValidMilestoneStatus(s MilestoneStatus) bool { return milestoneStatuses[s] }

// Badge is the visual category a status maps to.
type Badge string

const (
	BadgeGreen  Badge = "green"
	BadgeYellow Badge = "yellow"
	BadgeBlue   Badge = "blue"
	BadgeRed    Badge = "red"
	BadgePurple Badge = "purple"
	BadgeGray   Badge = "gray"
)

// BadgeColor maps a contract or milestone status onto its badge category.
// Total: unknown values fall through to gray.
func BadgeColor(status string) Badge {
	switch status {
	case string(ContractActive), string(MilestoneInProgress):
		return BadgeGreen
	case string(ContractPending), string(MilestonePendingReview):
		return BadgeYellow
	case string(ContractCompleted):
		return BadgeBlue
	case string(ContractCancelled):
		return BadgeRed
	case string(MilestoneReadyForPayment):
		return BadgePurple
	default:
		return BadgeGray
	}
}

var statusLabels = map[string]string{
	string(ContractActive):           "In Progress",
	string(MilestoneNotStarted):      "Not Started",
	string(MilestoneInProgress):      "In Progress",
	string(MilestonePendingReview):   "Pending Review",
	string(MilestoneReadyForPayment): "Ready for Payment",
}

// StatusLabel returns the display label for a status. Unmapped values echo
// the raw value with the first letter capitalized.
func StatusLabel(status string) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	if status == "" {
		return ""
	}
	return strings.ToUpper(status[:1]) + status[1:]
}

// Progress returns the completion percentage of a milestone list: the share
// of completed milestones, rounded to the nearest integer. Empty list is 0.
func Progress(milestones []Milestone) int {
	if len(milestones) == 0 {
		return 0
	}
	completed := 0
	for _, m := range milestones {
		if m.Status == MilestoneCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(milestones)) * 100))
}
