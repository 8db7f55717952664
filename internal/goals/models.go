package goals

import (
	"fmt"
	"time"
)

// GoalType discriminates the two kinds of conversion goals.
type GoalType string

const (
	GoalTypePage  GoalType = "page"  // visited URL contains GoalValue
	GoalTypeEvent GoalType = "event" // custom event name equals GoalValue
)

// Goal is a single conversion target: a page visited or an event fired.
// TargetCount is an optional monthly target used for progress display; nil
// means no target was set.
type Goal struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteID      uint      `gorm:"index;not null" json:"site_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	GoalType    GoalType  `gorm:"not null" json:"goal_type"`
	GoalValue   string    `gorm:"not null" json:"goal_value"`
	TargetCount *int      `json:"target_count,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the goal definition before persisting it.
func (g *Goal) Validate() error {
	if g.Name == "" {
		return fmt.Errorf("goal name is required")
	}
	if g.GoalType != GoalTypePage && g.GoalType != GoalTypeEvent {
		return fmt.Errorf("unknown goal type %q", g.GoalType)
	}
	if g.GoalValue == "" {
		return fmt.Errorf("goal value is required")
	}
	if g.TargetCount != nil && *g.TargetCount < 0 {
		return fmt.Errorf("target count cannot be negative")
	}
	return nil
}
