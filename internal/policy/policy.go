// Package policy is the pure parameter-requirement table: given an intent
// and what has already been collected, it says what is still needed.
package policy

import (
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/models"
)

// CompositeLabel names the any-of requirement for report lookups. It is
// satisfied when any one of its member keys holds a value.
const CompositeLabel = "sales_order/delivery_name/po_number"

var compositeMembers = []string{
	models.ParamSalesOrder,
	models.ParamDeliveryName,
	models.ParamPONumber,
}

// Spec lists what an intent still needs given the currently-known params.
type Spec struct {
	Required  []string // unmet single keys, in prompt order
	Composite string   // CompositeLabel when unmet, "" otherwise
	Optional  []string
}

// Missing returns the unmet requirement names: required singles first,
// then the composite label.
func (s Spec) Missing() []string {
	missing := append([]string{}, s.Required...)
	if s.Composite != "" {
		missing = append(missing, s.Composite)
	}
	return missing
}

// For evaluates the requirement table for intent against params.
func For(intent models.Intent, params models.ParamBag) Spec {
	var spec Spec

	switch intent {
	case models.IntentItemDetails:
		if !params.Has(models.ParamItem) && !params.Has(models.ParamProduct) {
			spec.Required = []string{models.ParamItem}
		}
	case models.IntentCoCDetails:
		if !params.Has(models.ParamModelItem) {
			spec.Required = []string{models.ParamModelItem}
		}
		spec.Optional = []string{models.ParamCountryQuery}
	case models.IntentReport:
		if !params.Has(models.ParamReportName) {
			spec.Required = []string{models.ParamReportName}
		}
		if !anyPresent(params, compositeMembers) {
			spec.Composite = CompositeLabel
		}
		spec.Optional = append([]string{}, compositeMembers...)
	case models.IntentTracking:
		if !params.Has(models.ParamSalesOrder) {
			spec.Required = []string{models.ParamSalesOrder}
		}
	}

	return spec
}

// Satisfied reports whether name — a single key or the composite label —
// has a value in bag.
func Satisfied(name string, bag models.ParamBag) bool {
	if name == CompositeLabel {
		return anyPresent(bag, compositeMembers)
	}
	return bag.Has(name)
}

// Unmet filters names down to those not yet satisfied by bag, preserving
// order.
func Unmet(names []string, bag models.ParamBag) []string {
	var remaining []string
	for _, name := range names {
		if !Satisfied(name, bag) {
			remaining = append(remaining, name)
		}
	}
	return remaining
}

func anyPresent(bag models.ParamBag, keys []string) bool {
	for _, key := range keys {
		if bag.Has(key) {
			return true
		}
	}
	return false
}
