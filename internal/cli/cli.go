package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/buger/goterm"
	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

var (
	queryColor     = color.New(color.FgHiBlue, color.Bold)
	countColor     = color.New(color.FgGreen)
	listingColor   = color.New(color.FgWhite, color.Bold)
	detailColor    = color.New(color.FgHiBlack)
	linkColor      = color.New(color.FgCyan, color.Underline)
	analysisColor  = color.New(color.FgCyan)
	errorColor     = color.New(color.FgRed)
	titleColor     = color.New(color.FgMagenta, color.Bold)
	separatorColor = color.New(color.FgHiBlack)
	promptColor    = color.New(color.FgHiBlue)
	statusColor    = color.New(color.FgYellow, color.Italic)

	width = goterm.Width()
)

// Width of the terminal, with a floor for non-tty output.
func Width() int {
	if width < 40 {
		return 80
	}
	return width
}

// Separator printed to cli.
func Separator() {
	separatorColor.Println(strings.Repeat("-", Width()))
}

// Title printed to cli.
func Title(text string, args ...any) {
	title := "      " + fmt.Sprintf(text, args...) + "      "
	leftWidth := (Width() - len(title)) / 2
	if leftWidth < 0 {
		leftWidth = 0
	}
	separator1 := strings.Repeat("-", leftWidth)
	rightWidth := Width() - len(title) - len(separator1)
	if rightWidth < 0 {
		rightWidth = 0
	}
	separator2 := strings.Repeat("-", rightWidth)
	titleColor.Println(separator1 + title + separator2)
}

// Query printed to cli.
func Query(text string, args ...any) {
	queryColor.Printf(text, args...)
}

// Count printed to cli.
func Count(text string, args ...any) {
	countColor.Printf(text, args...)
}

// Listing title printed to cli.
func Listing(text string, args ...any) {
	listingColor.Printf(text, args...)
}

// Detail printed to cli.
func Detail(text string, args ...any) {
	detailColor.Printf(text, args...)
}

// Link printed to cli.
func Link(url string) {
	linkColor.Println(url)
}

// Analysis printed to cli. Text is printed verbatim.
func Analysis(text string) {
	analysisColor.Println(text)
}

// Error printed to cli.
func Error(text string, args ...any) {
	errorColor.Printf(text, args...)
}

// Status printed to cli without a newline, until ClearStatus is called.
func Status(text string, args ...any) {
	statusColor.Printf(text, args...)
}

// ClearStatus erases the current line.
func ClearStatus() {
	fmt.Fprint(color.Output, goterm.RESET_LINE)
}

// PromptUser for a single line of input.
func PromptUser(historyFile string) (string, error) {
	config := &readline.Config{
		Prompt:            promptColor.Sprint("search> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistoryFile:       historyFile,
		HistorySearchFold: true,
	}
	rl, err := readline.NewEx(config)
	if err != nil {
		return "", err
	}
	defer rl.Close()
	return rl.Readline()
}

// SelectOption asks the user to pick one of options. Returns the chosen index.
func SelectOption(message string, options []string) (int, error) {
	surveyQuestion := &survey.Select{
		Message:  message,
		Options:  options,
		PageSize: 10,
	}
	var index int
	if err := survey.AskOne(surveyQuestion, &index); err != nil {
		return -1, err
	}
	return index, nil
}
