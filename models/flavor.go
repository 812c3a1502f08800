package models

import "strings"

// FlavorOption is a selectable ingredient in the builder.
type FlavorOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// VariantOption is a sweetness variant of a creation.
type VariantOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Fruits are the fruit ingredients of the builder catalog.
var Fruits = []FlavorOption{
	{ID: "apfel", Name: "Apfel", Emoji: "🍎"},
	{ID: "birne", Name: "Birne", Emoji: "🍐"},
	{ID: "orange", Name: "Orange", Emoji: "🍊"},
	{ID: "zitrone", Name: "Zitrone", Emoji: "🍋"},
	{ID: "grapefruit", Name: "Grapefruit", Emoji: "🍊"},
	{ID: "erdbeere", Name: "Erdbeere", Emoji: "🍓"},
	{ID: "himbeere", Name: "Himbeere", Emoji: "🫐"},
	{ID: "blaubeere", Name: "Blaubeere", Emoji: "🫐"},
	{ID: "kirsche", Name: "Kirsche", Emoji: "🍒"},
	{ID: "banane", Name: "Banane", Emoji: "🍌"},
	{ID: "mango", Name: "Mango", Emoji: "🥭"},
	{ID: "maracuja", Name: "Maracuja", Emoji: "🟠"},
	{ID: "ananas", Name: "Ananas", Emoji: "🍍"},
	{ID: "wassermelone", Name: "Wassermelone", Emoji: "🍉"},
	{ID: "melone", Name: "Melone", Emoji: "🍈"},
	{ID: "traube", Name: "Traube", Emoji: "🍇"},
	{ID: "holunder", Name: "Holunder", Emoji: "🌸"},
	{ID: "rhabarber", Name: "Rhabarber", Emoji: "🥬"},
	{ID: "pfirsich", Name: "Pfirsich", Emoji: "🍑"},
}

// Extras are the non-fruit ingredients of the builder catalog.
var Extras = []FlavorOption{
	{ID: "kokos", Name: "Kokos", Emoji: "🥥"},
	{ID: "minze", Name: "Minze", Emoji: "🌿"},
	{ID: "vanille", Name: "Vanille", Emoji: "🍦"},
	{ID: "rose", Name: "Rose", Emoji: "🌹"},
}

// AccentOptions are the selectable accents, including the explicit "none".
var AccentOptions = []FlavorOption{
	{ID: "none", Name: "Ohne", Emoji: "🚫"},
	{ID: "cola", Name: "Cola Bomb", Emoji: "🥤"},
	{ID: "energy", Name: "Energy", Emoji: "⚡"},
	{ID: "eistee", Name: "Eistee", Emoji: "🧊"},
}

// VariantOptions are the selectable sweetness variants.
var VariantOptions = []VariantOption{
	{ID: "original", Name: "🍬 Original", Description: "Voll süß, voll lecker!"},
	{ID: "light", Name: "💪 Light", Description: "Zero Sugar, voller Geschmack!"},
}

// PrimaryFlavors returns fruits and extras combined, in catalog order.
func PrimaryFlavors() []FlavorOption {
	out := make([]FlavorOption, 0, len(Fruits)+len(Extras))
	out = append(out, Fruits...)
	out = append(out, Extras...)
	return out
}

var flavorsByID = func() map[string]FlavorOption {
	m := make(map[string]FlavorOption, len(Fruits)+len(Extras))
	for _, f := range Fruits {
		m[f.ID] = f
	}
	for _, f := range Extras {
		m[f.ID] = f
	}
	return m
}()

// FlavorByID looks up a catalog ingredient by id.
func FlavorByID(id string) (FlavorOption, bool) {
	f, ok := flavorsByID[id]
	return f, ok
}

// IsKnownFlavor reports whether id names a catalog ingredient.
func IsKnownFlavor(id string) bool {
	_, ok := flavorsByID[id]
	return ok
}

// FlavorEmoji returns the emoji for a flavor id, with a generic fallback so a
// creation without an image still renders something.
func FlavorEmoji(id string) string {
	if f, ok := flavorsByID[id]; ok {
		return f.Emoji
	}
	return "🧃"
}

// beverageColors maps the dominant flavor to the drink color used in prompts.
var beverageColors = map[string]string{
	"erdbeere":      "vibrant red",
	"himbeere":      "deep raspberry pink",
	"kirsche":       "rich cherry red",
	"orange":        "bright orange",
	"mango":         "golden mango yellow",
	"ananas":        "tropical yellow",
	"apfel":         "light green-gold",
	"zitrone":       "pale yellow",
	"blaubeere":     "deep purple-blue",
	"traube":        "deep purple",
	"wassermelone":  "watermelon pink",
	"pfirsich":      "peachy orange",
	"banane":        "creamy yellow",
	"melone":        "light green",
	"maracuja":      "passion fruit orange",
	"holunder":      "light purple",
	"birne":         "pale golden",
	"grapefruit":    "pink-coral",
	"johannisbeere": "deep red",
	"rhabarber":     "pink-red",
	"kokos":         "creamy white",
	"minze":         "fresh mint green",
	"vanille":       "creamy vanilla",
	"rose":          "soft pink",
}

// BeverageColor returns the prompt color for the dominant flavor.
func BeverageColor(flavorID string) string {
	if c, ok := beverageColors[flavorID]; ok {
		return c
	}
	return "vibrant colored"
}

// garnishes maps flavors to the floating garnish described in prompts.
var garnishes = map[string]string{
	"erdbeere":     "fresh strawberry slices",
	"himbeere":     "whole raspberries",
	"kirsche":      "fresh cherries",
	"orange":       "orange slices",
	"mango":        "mango cubes",
	"ananas":       "pineapple chunks",
	"apfel":        "apple slices",
	"zitrone":      "lemon wedges",
	"blaubeere":    "fresh blueberries",
	"traube":       "grapes",
	"wassermelone": "watermelon pieces",
	"pfirsich":     "peach slices",
	"banane":       "banana slices",
	"melone":       "melon balls",
	"maracuja":     "passion fruit halves",
	"holunder":     "elderflower blossoms",
	"birne":        "pear slices",
	"grapefruit":   "grapefruit segments",
	"kokos":        "coconut flakes",
	"minze":        "fresh mint leaves",
}

// Garnish returns the garnish text for a flavor id, falling back to the id
// itself for flavors with no dedicated garnish.
func Garnish(flavorID string) string {
	if g, ok := garnishes[flavorID]; ok {
		return g
	}
	return flavorID
}

// standardMatches maps each ingredient to the standard products it resembles.
var standardMatches = map[string][]string{
	"orange":       {"Sunset Orange"},
	"grapefruit":   {"Sunset Orange"},
	"zitrone":      {"Sweet Lemon", "Skiwasser"},
	"erdbeere":     {"Berry Bomb"},
	"himbeere":     {"Berry Bomb", "Fruchtige Himbeere", "Skiwasser"},
	"blaubeere":    {"Berry Bomb"},
	"kirsche":      {"Very Cherry", "Berry Bomb"},
	"ananas":       {"Pineapple Dream"},
	"mango":        {"Mango-Maracuja"},
	"maracuja":     {"Mango-Maracuja"},
	"banane":       {"Mango-Maracuja"},
	"kokos":        {"Pineapple Dream"},
	"apfel":        {"Apfel-Holunder", "BIO Apfel"},
	"birne":        {"Birne-Melone"},
	"melone":       {"Birne-Melone"},
	"wassermelone": {"Wassermelone", "Birne-Melone"},
	"pfirsich":     {"Eistee Pfirsich"},
	"traube":       {"Berry Bomb", "Summerdream"},
	"rhabarber":    {"Rhabarber"},
	"holunder":     {"Holunder-Blüte", "Apfel-Holunder"},
	"rose":         {"Holunder-Blüte"},
	"minze":        {"Skiwasser", "Waldmeister"},
	"vanille":      {"Eistee Pfirsich"},
}

// accentStandardMatches adds accent-driven matches on top of the flavor ones.
var accentStandardMatches = map[string][]string{
	"eistee": {"Eistee Pfirsich"},
	"cola":   {"Berry Bomb"},
	"energy": {"Sunset Orange"},
}

// FindStandardMatches returns the standard products closest to a creation,
// formatted as a German list ("A, B und C"). Falls back to the bestseller
// when nothing matches.
func FindStandardMatches(flavorIDs []string, accent string) string {
	seen := make(map[string]bool)
	var matches []string
	add := func(names []string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				matches = append(matches, n)
			}
		}
	}

	for _, id := range flavorIDs {
		add(standardMatches[id])
	}
	if accent != "" {
		add(accentStandardMatches[accent])
	}

	switch len(matches) {
	case 0:
		return "Berry Bomb"
	case 1:
		return matches[0]
	case 2:
		return matches[0] + " und " + matches[1]
	default:
		last := matches[len(matches)-1]
		return strings.Join(matches[:len(matches)-1], ", ") + " und " + last
	}
}
