package enums

import "fmt"

// ComplaintStatus tracks a support ticket through triage.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "pending"
	ComplaintStatusInProgress ComplaintStatus = "in-progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
	ComplaintStatusRejected   ComplaintStatus = "rejected"
)

var validComplaintStatuses = []ComplaintStatus{
	ComplaintStatusPending,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
	ComplaintStatusRejected,
}

func (s ComplaintStatus) String() string {
	return string(s)
}

func (s ComplaintStatus) IsValid() bool {
	for _, valid := range validComplaintStatuses {
		if s == valid {
			return true
		}
	}
	return false
}

func ParseComplaintStatus(raw string) (ComplaintStatus, error) {
	status := ComplaintStatus(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid complaint status %q", raw)
	}
	return status, nil
}

// ComplaintCategory classifies what the ticket is about.
type ComplaintCategory string

const (
	ComplaintCategoryProduct  ComplaintCategory = "product"
	ComplaintCategoryDelivery ComplaintCategory = "delivery"
	ComplaintCategoryPayment  ComplaintCategory = "payment"
	ComplaintCategoryWebsite  ComplaintCategory = "website"
	ComplaintCategoryOther    ComplaintCategory = "other"
)

var validComplaintCategories = []ComplaintCategory{
	ComplaintCategoryProduct,
	ComplaintCategoryDelivery,
	ComplaintCategoryPayment,
	ComplaintCategoryWebsite,
	ComplaintCategoryOther,
}

func (c ComplaintCategory) IsValid() bool {
	for _, valid := range validComplaintCategories {
		if c == valid {
			return true
		}
	}
	return false
}

func ParseComplaintCategory(raw string) (ComplaintCategory, error) {
	if raw == "" {
		return ComplaintCategoryOther, nil
	}
	category := ComplaintCategory(raw)
	if !category.IsValid() {
		return "", fmt.Errorf("invalid complaint category %q", raw)
	}
	return category, nil
}

// ComplaintPriority orders tickets for the back office.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "low"
	ComplaintPriorityMedium ComplaintPriority = "medium"
	ComplaintPriorityHigh   ComplaintPriority = "high"
)

var validComplaintPriorities = []ComplaintPriority{
	ComplaintPriorityLow,
	ComplaintPriorityMedium,
	ComplaintPriorityHigh,
}

func (p ComplaintPriority) IsValid() bool {
	for _, valid := range validComplaintPriorities {
		if p == valid {
			return true
		}
	}
	return false
}

func ParseComplaintPriority(raw string) (ComplaintPriority, error) {
	if raw == "" {
		return ComplaintPriorityMedium, nil
	}
	priority := ComplaintPriority(raw)
	if !priority.IsValid() {
		return "", fmt.Errorf("invalid complaint priority %q", raw)
	}
	return priority, nil
}
