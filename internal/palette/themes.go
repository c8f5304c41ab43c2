package palette

// Theme is a named set of grid colors plus a few accents for collaborators.
type Theme struct {
	Name       string
	Background Color
	Cell       Color
	Grid       Color
	Red        Color
	Green      Color
	Blue       Color
	Yellow     Color
	Magenta    Color
	Cyan       Color
}

// Accents returns the accent colors in a stable order.
func (t Theme) Accents() []Color {
	return []Color{t.Red, t.Green, t.Blue, t.Yellow, t.Magenta, t.Cyan}
}

var (
	ThemeOneDark = Theme{
		Name:       "one_dark",
		Background: MustHex("#282C34"),
		Cell:       MustHex("#ABB2BF"),
		Grid:       MustHex("#474D58"),
		Red:        MustHex("#E06C75"),
		Green:      MustHex("#98C379"),
		Blue:       MustHex("#61AFEF"),
		Yellow:     MustHex("#E5C07B"),
		Magenta:    MustHex("#C678DD"),
		Cyan:       MustHex("#56B6C2"),
	}

	ThemeBoring = Theme{
		Name:       "boring",
		Background: MustHex("#FFFFFF"),
		Cell:       MustHex("#000000"),
		Grid:       MustHex("#888888"),
		Red:        MustHex("#FF0000"),
		Green:      MustHex("#00FF00"),
		Blue:       MustHex("#0000FF"),
		Yellow:     MustHex("#FFFF00"),
		Magenta:    MustHex("#FF00FF"),
		Cyan:       MustHex("#00FFFF"),
	}

	ThemeGruvboxDark = Theme{
		Name:       "gruvbox_dark",
		Background: MustHex("#282828"),
		Cell:       MustHex("#EBDBB2"),
		Grid:       MustHex("#625A52"),
		Red:        MustHex("#FB4934"),
		Green:      MustHex("#B8BB26"),
		Blue:       MustHex("#83A598"),
		Yellow:     MustHex("#FABD2F"),
		Magenta:    MustHex("#D3859B"),
		Cyan:       MustHex("#83A598"),
	}

	ThemeGruvboxLight = Theme{
		Name:       "gruvbox_light",
		Background: MustHex("#FBF1C7"),
		Cell:       MustHex("#3C3836"),
		Grid:       MustHex("#928374"),
		Red:        MustHex("#CC241D"),
		Green:      MustHex("#98971A"),
		Blue:       MustHex("#458588"),
		Yellow:     MustHex("#D79921"),
		Magenta:    MustHex("#B16286"),
		Cyan:       MustHex("#689D6A"),
	}

	ThemeSolarizedDark = Theme{
		Name:       "solarized_dark",
		Background: MustHex("#002B36"),
		Cell:       MustHex("#EEE8D5"),
		Grid:       MustHex("#39575F"),
		Red:        MustHex("#DC322F"),
		Green:      MustHex("#859900"),
		Blue:       MustHex("#268BD2"),
		Yellow:     MustHex("#B58900"),
		Magenta:    MustHex("#6C71C4"),
		Cyan:       MustHex("#2AA198"),
	}

	DefaultTheme = ThemeOneDark

	Themes = []Theme{
		ThemeOneDark,
		ThemeBoring,
		ThemeGruvboxDark,
		ThemeGruvboxLight,
		ThemeSolarizedDark,
	}
)

// GetTheme returns a theme by name.
func GetTheme(name string) (Theme, bool) {
	for _, t := range Themes {
		if t.Name == name {
			return t, true
		}
	}
	return DefaultTheme, false
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
