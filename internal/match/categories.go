// Package match implements candidate selection, category gating and the
// weighted scoring that resolves uploaded rows to catalog assets.
package match

import (
	"strings"

	"github.com/buildscope/assetmatch/internal/normalize"
)

// categoryAliases maps common catalog spellings to a canonical domain name,
// so "Air Conditioning" and "HVAC" are treated as the same category before
// falling back to text similarity.
var categoryAliases = map[string]string{
	"HVAC":                 "HVAC",
	"AIR CONDITIONING":     "HVAC",
	"MECHANICAL":           "HVAC",
	"VENTILATION":          "HVAC",
	"PLUMBING":             "PLUMBING",
	"WET SERVICES":         "PLUMBING",
	"SANITARY":             "PLUMBING",
	"PUBLIC HEALTH":        "PLUMBING",
	"ELECTRICAL":           "ELECTRICAL",
	"ELECTRICAL SERVICES":  "ELECTRICAL",
	"POWER":                "ELECTRICAL",
	"FIRE SAFETY":          "FIRE SAFETY",
	"FIRE PROTECTION":      "FIRE SAFETY",
	"FIRE FIGHTING":        "FIRE SAFETY",
	"LIFE SAFETY":          "FIRE SAFETY",
	"SECURITY":             "SECURITY",
	"SECURITY SYSTEMS":     "SECURITY",
	"ACCESS CONTROL":       "SECURITY",
	"VERTICAL TRANSPORT":   "VERTICAL TRANSPORT",
	"LIFTS AND ESCALATORS": "VERTICAL TRANSPORT",
	"ELEVATORS":            "VERTICAL TRANSPORT",
}

// CanonicalCategory resolves a category name through the alias table. The
// second return reports whether the name mapped to a known domain.
func CanonicalCategory(name string) (string, bool) {
	canonical, ok := categoryAliases[normalize.Normalize(name)]
	return canonical, ok
}

// categoryConflicts lists, per canonical domain, the domains it is never
// compatible with. Checked symmetrically.
var categoryConflicts = map[string][]string{
	"PLUMBING":           {"ELECTRICAL", "FIRE SAFETY", "SECURITY"},
	"ELECTRICAL":         {"PLUMBING"},
	"SECURITY":           {"PLUMBING", "HVAC"},
	"HVAC":               {"SECURITY"},
	"FIRE SAFETY":        {"PLUMBING"},
	"VERTICAL TRANSPORT": {"PLUMBING", "SECURITY"},
}

// domainKeywords infers the apparent domain of uploaded text. A keyword hit
// marks the text as belonging to that domain for gating purposes.
var domainKeywords = map[string][]string{
	"PLUMBING": {
		"WATER CLOSET", "WASH BASIN", "URINAL", "TOILET", "FAUCET", "SHOWER",
		"DRAIN", "SUMP", "SEWAGE", "WATER HEATER", "WATER TANK", "PLUMBING",
	},
	"ELECTRICAL": {
		"DISTRIBUTION BOARD", "PANEL BOARD", "SWITCHGEAR", "TRANSFORMER",
		"GENERATOR", "BUSBAR", "CAPACITOR BANK", "UNINTERRUPTIBLE POWER",
		"MOTOR CONTROL CENTER", "LIGHTING", "SOCKET", "ELECTRICAL",
	},
	"FIRE SAFETY": {
		"FIRE ALARM", "SPRINKLER", "FIRE EXTINGUISHER", "SMOKE DETECTOR",
		"FIRE PUMP", "HOSE REEL", "FIRE SUPPRESSION", "FIRE SAFETY",
	},
	"SECURITY": {
		"CCTV", "SECURITY CAMERA", "ACCESS CONTROL", "INTRUSION",
		"BARRIER GATE", "TURNSTILE", "SECURITY",
	},
	"HVAC": {
		"CHILLER", "AIR HANDLING", "FAN COIL", "AIR CONDITION", "DUCT",
		"VENTILATION FAN", "EXHAUST FAN", "COOLING TOWER", "SPLIT UNIT",
		"PACKAGE UNIT", "HVAC",
	},
	"VERTICAL TRANSPORT": {
		"ELEVATOR", "ESCALATOR", "LIFT CAR", "PASSENGER LIFT", "SERVICE LIFT",
	},
}

// IsCompatible reports whether a candidate's catalog category could plausibly
// describe the uploaded text. Incompatibility is a hard veto: the caller must
// score vetoed candidates as exactly 0 regardless of textual similarity.
func IsCompatible(uploadedText, candidateCategory string) bool {
	candidate, known := CanonicalCategory(candidateCategory)
	if !known {
		return true
	}

	normalized := normalize.Normalize(uploadedText)
	if normalized == "" {
		return true
	}

	for domain, keywords := range domainKeywords {
		if domain == candidate {
			continue
		}
		if !mentionsAny(normalized, keywords) {
			continue
		}
		if conflicts(domain, candidate) {
			return false
		}
	}

	return true
}

func mentionsAny(normalized string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}

func conflicts(a, b string) bool {
	for _, c := range categoryConflicts[a] {
		if c == b {
			return true
		}
	}
	for _, c := range categoryConflicts[b] {
		if c == a {
			return true
		}
	}
	return false
}
