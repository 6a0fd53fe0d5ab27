package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"dogfinder/internal/catalog"
	"dogfinder/internal/search"
	"dogfinder/pkg/configutil"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(browseCmd)
}

const browseHelp = `commands:
  breed [name]        filter by breed, without a name every breed is shown
  age-min [n]         minimum age (0-14), without n the bound is removed
  age-max [n]         maximum age (0-14), without n the bound is removed
  sort asc|desc       order by breed
  city [names]        set comma separated cities, use apply to filter by them
  apply               apply the city filter
  clear               remove the city filter
  page <n>            go to a page
  next, prev          go to the next or previous page
  first, last         go to the first or last page
  fav <row|id>        add or remove a dog of this page from the favorites
  favs                list the favorites
  match               pick one of the favorites at random
  show                print the current page again
  quit                leave`

// splitArgs splits a line on spaces, double quotes group words.
func splitArgs(line string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false
	for _, char := range line {
		switch {
		case char == '"':
			inQuotes = !inQuotes
		case char == ' ' && !inQuotes:
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

type browser struct {
	coord  *search.Coordinator
	breeds breedLister
	out    io.Writer
	rnd    *rand.Rand
}

func parseOptionalInt(args []string) (*int, error) {
	if len(args) == 0 {
		return nil, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", args[0])
	}
	return &n, nil
}

func (b *browser) show() {
	renderView(b.out, b.coord.View(), b.coord.Favorites())
}

// update applies a filter change and prints the results if they were reloaded.
func (b *browser) update(ctx context.Context, change search.Change) error {
	return b.showReloaded(b.coord.Update(ctx, change))
}

func (b *browser) showReloaded(reloaded bool, err error) error {
	if err != nil {
		return err
	}
	if !reloaded {
		fmt.Fprintln(b.out, "the search did not change")
		return nil
	}
	b.show()
	return nil
}

func (b *browser) move(ctx context.Context, move func(context.Context) (bool, error), bound string) error {
	moved, err := move(ctx)
	if err != nil {
		return err
	}
	if !moved {
		fmt.Fprintf(b.out, "already on the %s page\n", bound)
		return nil
	}
	b.show()
	return nil
}

// pick finds a dog by its row on the current page, its id on the current page
// or its id among the favorites.
func (b *browser) pick(arg string) (catalog.Dog, error) {
	dogs := b.coord.View().Dogs
	row, err := strconv.Atoi(arg)
	if err == nil {
		if row < 1 || row > len(dogs) {
			return catalog.Dog{}, fmt.Errorf("there is no row %d on this page", row)
		}
		return dogs[row-1], nil
	}
	for _, dog := range dogs {
		if dog.ID == arg {
			return dog, nil
		}
	}
	for _, dog := range b.coord.Favorites().List() {
		if dog.ID == arg {
			return dog, nil
		}
	}
	return catalog.Dog{}, fmt.Errorf("there is no dog %q on this page or in the favorites", arg)
}

// execute runs a single command, quit is true when the session should end.
func (b *browser) execute(ctx context.Context, args []string) (quit bool, err error) {
	if len(args) == 0 {
		return false, nil
	}
	command, rest := args[0], args[1:]

	switch command {
	case "help", "?":
		fmt.Fprintln(b.out, browseHelp)
	case "quit", "exit":
		return true, nil
	case "show":
		b.show()
	case "breed":
		if len(rest) == 0 {
			return false, b.update(ctx, search.ResetBreed())
		}
		breed, err := resolveBreed(ctx, b.breeds, strings.Join(rest, " "))
		if err != nil {
			return false, err
		}
		return false, b.update(ctx, search.SelectBreed(breed))
	case "age-min", "age-max":
		age, err := parseOptionalInt(rest)
		if err != nil {
			return false, err
		}
		if command == "age-min" {
			return false, b.update(ctx, search.SetAgeMin(age))
		}
		return false, b.update(ctx, search.SetAgeMax(age))
	case "sort":
		if len(rest) != 1 {
			return false, fmt.Errorf("usage: sort asc|desc")
		}
		direction, err := parseSortDirection(rest[0])
		if err != nil {
			return false, err
		}
		return false, b.update(ctx, search.SetSortDirection(direction))
	case "city":
		_, err := b.coord.Update(ctx, search.SetLocationCity(strings.Join(rest, " ")))
		if err != nil {
			return false, err
		}
		fmt.Fprintln(b.out, "run apply to filter by this city")
	case "apply":
		return false, b.showReloaded(b.coord.ApplyLocationFilter(ctx))
	case "clear":
		return false, b.showReloaded(b.coord.ClearLocationFilter(ctx))
	case "page":
		if len(rest) != 1 {
			return false, fmt.Errorf("usage: page <n>")
		}
		page, err := strconv.Atoi(rest[0])
		if err != nil {
			return false, fmt.Errorf("%q is not a page number", rest[0])
		}
		err = b.coord.GoTo(ctx, page)
		if err != nil {
			return false, err
		}
		b.show()
	case "next":
		return false, b.move(ctx, b.coord.Next, "last")
	case "last":
		return false, b.move(ctx, b.coord.Last, "last")
	case "prev":
		return false, b.move(ctx, b.coord.Prev, "first")
	case "first":
		return false, b.move(ctx, b.coord.First, "first")
	case "fav":
		if len(rest) != 1 {
			return false, fmt.Errorf("usage: fav <row|id>")
		}
		dog, err := b.pick(rest[0])
		if err != nil {
			return false, err
		}
		return false, toggle(ctx, b.out, b.coord.Favorites(), dog)
	case "favs":
		dogs := b.coord.Favorites().List()
		if len(dogs) == 0 {
			fmt.Fprintln(b.out, "no favorites yet")
			return false, nil
		}
		renderDogs(b.out, dogs, b.coord.Favorites())
	case "match":
		localMatch(b.out, b.coord.Favorites(), b.rnd)
	default:
		return false, fmt.Errorf("unknown command %q, type help for a list", command)
	}
	return false, nil
}

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Starts an interactive search session.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		ctx := cmd.Context()

		history, err := configutil.ResolvePath(appName, "<config_dir>/history")
		if err != nil {
			return err
		}
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "dogfinder> ",
			HistoryFile:     history,
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return err
		}
		defer rl.Close()

		b := &browser{
			coord:  search.NewCoordinator(a.client, a.favorites, a.tel),
			breeds: a.client,
			out:    a.out,
			rnd:    newRand(),
		}
		err = b.coord.LoadDogs(ctx, 1)
		if err != nil {
			return err
		}
		b.show()
		fmt.Fprintln(a.out, "type help for a list of commands")

		for ctx.Err() == nil {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				if line == "" {
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}

			quit, err := b.execute(ctx, splitArgs(strings.TrimSpace(line)))
			if errors.Is(err, catalog.ErrUnauthorized) {
				return err
			}
			if err != nil {
				fmt.Fprintln(a.out, "error:", err)
			}
			if quit {
				return nil
			}
		}
		return nil
	},
}
