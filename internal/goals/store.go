package goals

import (
	"fmt"

	"gorm.io/gorm"
)

// Create validates and persists a new goal.
func Create(db *gorm.DB, goal *Goal) error {
	if err := goal.Validate(); err != nil {
		return err
	}
	if err := db.Create(goal).Error; err != nil {
		return fmt.Errorf("creating goal: %w", err)
	}
	return nil
}

// Get retrieves one goal scoped to a site.
func Get(db *gorm.DB, siteID, goalID uint) (*Goal, error) {
	var goal Goal
	err := db.Where("site_id = ? AND id = ?", siteID, goalID).First(&goal).Error
	if err != nil {
		return nil, fmt.Errorf("loading goal %d: %w", goalID, err)
	}
	return &goal, nil
}

// List returns a site's goals. With activeOnly, paused goals are skipped.
func List(db *gorm.DB, siteID uint, activeOnly bool) ([]Goal, error) {
	query := db.Where("site_id = ?", siteID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var all []Goal
	if err := query.Order("name ASC").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	return all, nil
}

// Update validates and saves changes to an existing goal.
func Update(db *gorm.DB, goal *Goal) error {
	if err := goal.Validate(); err != nil {
		return err
	}
	if err := db.Save(goal).Error; err != nil {
		return fmt.Errorf("updating goal %d: %w", goal.ID, err)
	}
	return nil
}

// Delete removes a goal.
func Delete(db *gorm.DB, siteID, goalID uint) error {
	err := db.Where("site_id = ? AND id = ?", siteID, goalID).Delete(&Goal{}).Error
	if err != nil {
		return fmt.Errorf("deleting goal %d: %w", goalID, err)
	}
	return nil
}

// EnsurePresets seeds starter goals for a site that has none. Unlike funnel
// presets these are ordinary goals: once the site has any goal at all,
// including ones the user created themselves, nothing is seeded.
func EnsurePresets(db *gorm.DB, siteID uint) error {
	var existing int64
	if err := db.Model(&Goal{}).Where("site_id = ?", siteID).Count(&existing).Error; err != nil {
		return fmt.Errorf("checking existing goals: %w", err)
	}
	if existing > 0 {
		return nil
	}

	presets := []Goal{
		{Name: "Contact Form Submitted", Description: "Visitor submitted the contact form", GoalType: GoalTypeEvent, GoalValue: "form_submit"},
		{Name: "Pricing Page Viewed", Description: "Visitor viewed the pricing page", GoalType: GoalTypePage, GoalValue: "/pricing"},
		{Name: "Signup Completed", Description: "Visitor completed signup", GoalType: GoalTypeEvent, GoalValue: "signup"},
		{Name: "Blog Post Read", Description: "Visitor read a blog post", GoalType: GoalTypePage, GoalValue: "/blog/"},
	}

	for i := range presets {
		presets[i].SiteID = siteID
		presets[i].IsActive = true
		if err := db.Create(&presets[i]).Error; err != nil {
			return fmt.Errorf("creating preset goal %q: %w", presets[i].Name, err)
		}
	}
	return nil
}
