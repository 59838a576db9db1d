package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/board"
	"github.com/julianstephens/tally/internal/constants"
	"github.com/julianstephens/tally/internal/models"
)

// TrackerFormModel backs the add/edit tracker form.
type TrackerFormModel struct {
	Name     string
	Emoji    string
	Color    string
	Category string
	Kind     models.TrackerKind
	Days     []time.Weekday
}

func newTrackerFormModel() *TrackerFormModel {
	return &TrackerFormModel{
		Emoji:    constants.TrackerEmojis[0],
		Color:    constants.DefaultTrackerColor,
		Category: constants.DefaultCategoryTitle,
		Kind:     models.TrackerKindHabit,
		Days:     models.EveryDay().Weekdays(),
	}
}

func formModelFrom(d board.Draft) *TrackerFormModel {
	return &TrackerFormModel{
		Name:     d.Name,
		Emoji:    d.Emoji,
		Color:    d.Color,
		Category: d.Category,
		Kind:     d.Kind,
		Days:     d.Schedule.Weekdays(),
	}
}

func (fm *TrackerFormModel) Draft() board.Draft {
	kind := fm.Kind
	if kind == "" {
		kind = models.TrackerKindHabit
	}
	return board.Draft{
		Name:     fm.Name,
		Emoji:    fm.Emoji,
		Color:    fm.Color,
		Category: fm.Category,
		Kind:     kind,
		Schedule: models.NewSchedule(fm.Days...),
	}
}

var weekdayOptions = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// NewTrackerForm builds the add/edit form. categories are offered as
// suggestions for the category field.
func NewTrackerForm(fm *TrackerFormModel, categories []string) *huh.Form {
	colors := constants.TrackerColors
	if fm.Color != "" && !containsFold(colors, fm.Color) {
		colors = append([]string{fm.Color}, colors...)
	}
	colorOptions := make([]huh.Option[string], 0, len(colors))
	for _, c := range colors {
		colorOptions = append(colorOptions, huh.NewOption(trackerStyle(c).Render("■■")+" "+c, c))
	}

	dayOptions := make([]huh.Option[time.Weekday], 0, len(weekdayOptions))
	for _, d := range weekdayOptions {
		dayOptions = append(dayOptions, huh.NewOption(d.String(), d))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tracker Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("tracker name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.TrackerKind]().
				Title("Kind").
				Options(
					huh.NewOption("Habit (repeats on chosen weekdays)", models.TrackerKindHabit),
					huh.NewOption("Irregular event", models.TrackerKindEvent),
				).
				Value(&fm.Kind),
			huh.NewInput().
				Title("Category").
				Suggestions(categories).
				Value(&fm.Category),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Emoji").
				Description(strings.Join(constants.TrackerEmojis, " ")).
				Value(&fm.Emoji).
				Validate(models.ValidateEmoji),
			huh.NewSelect[string]().
				Title("Color").
				Options(colorOptions...).
				Value(&fm.Color),
		),
		huh.NewGroup(
			huh.NewMultiSelect[time.Weekday]().
				Title("Schedule").
				Options(dayOptions...).
				Value(&fm.Days).
				Validate(func(days []time.Weekday) error {
					if len(days) == 0 {
						return fmt.Errorf("choose at least one weekday")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return fm.Kind == models.TrackerKindEvent }),
	).WithTheme(huh.ThemeDracula())
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
