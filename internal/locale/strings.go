package locale

import "golang.org/x/text/language"

// Strings are the user-facing labels of the HTML grid.
type Strings struct {
	ProgramsHidden string
	Program        string
	ToggleProgram  string
	Show           string
	Hide           string
}

// uiStrings is indexed like supported.
var uiStrings = []Strings{
	{
		ProgramsHidden: "programs hidden",
		Program:        "Program",
		ToggleProgram:  "Toggle program visibility",
		Show:           "Show",
		Hide:           "Hide",
	},
	{
		ProgramsHidden: "ohjelmaa piilotettu",
		Program:        "Ohjelma",
		ToggleProgram:  "Vaihda ohjelman näkyvyyttä",
		Show:           "näytä",
		Hide:           "piilota",
	},
	{
		ProgramsHidden: "program dolda",
		Program:        "Program",
		ToggleProgram:  "Växla programsynlighet",
		Show:           "visa",
		Hide:           "dölj",
	},
}

// UIStrings returns the grid labels for the supported language closest to
// tag, falling back to English.
func UIStrings(tag language.Tag) Strings {
	_, idx, _ := matcher.Match(tag)
	return uiStrings[idx]
}
