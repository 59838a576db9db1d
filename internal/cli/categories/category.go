package categories

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/tally/internal/cli"
)

type CategoryCmd struct {
	List   CategoryListCmd   `cmd:"" help:"List categories."`
	Rename CategoryRenameCmd `cmd:"" help:"Rename a category. Renaming onto an existing title merges them."`
	Delete CategoryDeleteCmd `cmd:"" help:"Delete an empty category."`
}

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	records, err := ctx.Store.GetAllCategories()
	if err != nil {
		return fmt.Errorf("failed to get categories: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No categories found.")
		return nil
	}

	counts := make(map[string]int)
	for _, cat := range b.Snapshot().Categories {
		counts[cat.Title] = len(cat.Trackers)
	}

	for _, r := range records {
		fmt.Printf("%s  (%d tracker(s), created %s)\n", r.Title, counts[r.Title], humanize.Time(r.CreatedAt))
	}
	return nil
}

type CategoryRenameCmd struct {
	Old string `arg:"" help:"Current title."`
	New string `arg:"" help:"New title."`
}

func (c *CategoryRenameCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	merging := false
	if c.Old != c.New {
		if _, err := ctx.Store.GetCategoryByTitle(c.New); err == nil {
			merging = true
		}
	}

	if err := b.RenameCategory(c.Old, c.New); err != nil {
		return err
	}

	if merging {
		fmt.Printf("Merged category %q into %q\n", c.Old, c.New)
	} else {
		fmt.Printf("Renamed category %q to %q\n", c.Old, c.New)
	}
	return nil
}

type CategoryDeleteCmd struct {
	Title string `arg:"" help:"Category title."`
}

func (c *CategoryDeleteCmd) Run(ctx *cli.Context) error {
	b, err := ctx.Board()
	if err != nil {
		return err
	}

	if err := b.DeleteCategory(c.Title); err != nil {
		return err
	}
	fmt.Printf("Deleted category %q\n", c.Title)
	return nil
}
