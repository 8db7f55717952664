package funnels

import (
	"fmt"

	"gorm.io/gorm"
)

// Create persists a new funnel definition.
func Create(db *gorm.DB, siteID uint, name, description string, steps []FunnelStep) (*Funnel, error) {
	funnel := &Funnel{SiteID: siteID, Name: name, Description: description}
	if err := funnel.SetSteps(steps); err != nil {
		return nil, err
	}
	if err := db.Create(funnel).Error; err != nil {
		return nil, fmt.Errorf("creating funnel: %w", err)
	}
	return funnel, nil
}

// Get retrieves one funnel scoped to a site.
func Get(db *gorm.DB, siteID, funnelID uint) (*Funnel, error) {
	var funnel Funnel
	err := db.Where("site_id = ? AND id = ?", siteID, funnelID).First(&funnel).Error
	if err != nil {
		return nil, fmt.Errorf("loading funnel %d: %w", funnelID, err)
	}
	return &funnel, nil
}

// List returns a site's funnels, presets first.
func List(db *gorm.DB, siteID uint) ([]Funnel, error) {
	var all []Funnel
	err := db.Where("site_id = ?", siteID).
		Order("is_preset DESC, name ASC").
		Find(&all).Error
	if err != nil {
		return nil, fmt.Errorf("listing funnels: %w", err)
	}
	return all, nil
}

// Update replaces a funnel's name, description, and steps.
func Update(db *gorm.DB, funnel *Funnel) error {
	if err := db.Save(funnel).Error; err != nil {
		return fmt.Errorf("updating funnel %d: %w", funnel.ID, err)
	}
	return nil
}

// Delete removes a user-defined funnel. Presets cannot be deleted.
func Delete(db *gorm.DB, siteID, funnelID uint) error {
	err := db.Where("site_id = ? AND id = ? AND is_preset = ?", siteID, funnelID, false).
		Delete(&Funnel{}).Error
	if err != nil {
		return fmt.Errorf("deleting funnel %d: %w", funnelID, err)
	}
	return nil
}

// EnsurePresets creates the built-in funnels for a site when they are
// missing. Existing funnels with the same name are left alone.
func EnsurePresets(db *gorm.DB, siteID uint) error {
	presets := []struct {
		name        string
		description string
		steps       []FunnelStep
	}{
		{
			name:        "Landing to Signup",
			description: "Track visitors from landing page to signup completion",
			steps: []FunnelStep{
				{Type: StepTypePage, Value: "/", Label: "Landing Page"},
				{Type: StepTypePage, Value: "/signup", Label: "Signup Page"},
				{Type: StepTypeEvent, Value: "signup_complete", Label: "Signup Complete"},
			},
		},
		{
			name:        "Blog to Conversion",
			description: "Track blog readers who convert",
			steps: []FunnelStep{
				{Type: StepTypePage, Value: "/blog", Label: "Blog"},
				{Type: StepTypePage, Value: "/pricing", Label: "Pricing"},
				{Type: StepTypeEvent, Value: "checkout_start", Label: "Start Checkout"},
			},
		},
		{
			name:        "Product Journey",
			description: "Track the product page to purchase flow",
			steps: []FunnelStep{
				{Type: StepTypePage, Value: "/products", Label: "Products"},
				{Type: StepTypePage, Value: "/cart", Label: "Cart"},
				{Type: StepTypePage, Value: "/checkout", Label: "Checkout"},
				{Type: StepTypeEvent, Value: "purchase", Label: "Purchase"},
			},
		},
	}

	for _, preset := range presets {
		var existing int64
		if err := db.Model(&Funnel{}).
			Where("site_id = ? AND name = ?", siteID, preset.name).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("checking preset funnel %q: %w", preset.name, err)
		}
		if existing > 0 {
			continue
		}

		funnel := &Funnel{SiteID: siteID, Name: preset.name, Description: preset.description, IsPreset: true}
		if err := funnel.SetSteps(preset.steps); err != nil {
			return err
		}
		if err := db.Create(funnel).Error; err != nil {
			return fmt.Errorf("creating preset funnel %q: %w", preset.name, err)
		}
	}
	return nil
}
