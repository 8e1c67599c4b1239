package main

import (
	"errors"
	"fmt"
	"strconv"

	"pokedex/cmd/pokedex/ui"
	"pokedex/internal/catalog"
	"pokedex/internal/logging"
	"pokedex/internal/pokedex"

	"github.com/spf13/cobra"
)

// runList prints one listing page.
func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	if limit <= 0 {
		limit = cfg.Resolver.PageSize
	}

	records, err := newPokedex().Listing.Load(cmd.Context(), limit, offset)
	if err != nil && !warnPartial(cmd, err) {
		return fmt.Errorf("failed to load listing: %w", err)
	}
	logging.Listing("listed %d pokemon (limit=%d offset=%d)", len(records), limit, offset)

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pokemon on this page.")
		return nil
	}

	table := ui.NewSimpleTable("Pokémon", []string{"#", "Name", "Image"})
	for i, r := range records {
		table.AddRow(strconv.Itoa(offset+i+1), r.Name, r.ImageURL)
	}
	fmt.Fprint(cmd.OutOrStdout(), table.View(outputStyles()))
	return nil
}

// runShow prints one pokemon as rendered markdown.
func runShow(cmd *cobra.Command, args []string) error {
	withEvolution, _ := cmd.Flags().GetBool("evolution")
	raw, _ := cmd.Flags().GetBool("raw")
	px := newPokedex()

	var (
		detail *catalog.EntityDetail
		stages []pokedex.EvolutionStage
		err    error
	)
	if withEvolution {
		detail, stages, err = px.Evolution.ResolveByName(cmd.Context(), args[0])
		if err != nil && detail != nil && !warnPartial(cmd, err) {
			return fmt.Errorf("failed to resolve evolution line: %w", err)
		}
	} else {
		detail, err = px.Detail.LoadByName(cmd.Context(), args[0])
	}
	if detail == nil {
		return lookupError(args[0], err)
	}

	md := ui.DetailMarkdown(detail, stages)
	if raw {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), ui.NewPlainMarkdown(80).Render(md))
	return nil
}

// runEvolution prints the ordered evolution line.
func runEvolution(cmd *cobra.Command, args []string) error {
	detail, stages, err := newPokedex().Evolution.ResolveByName(cmd.Context(), args[0])
	if detail == nil {
		return lookupError(args[0], err)
	}
	if err != nil && !warnPartial(cmd, err) {
		return fmt.Errorf("failed to resolve evolution line for %s: %w", detail.Name, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.EvolutionLine(stages))
	fmt.Fprintln(out)

	table := ui.NewSimpleTable("", []string{"Stage", "Name", "Animated image"})
	for i, s := range stages {
		table.AddRow(strconv.Itoa(i+1), s.Name, s.AnimatedImageURL)
	}
	fmt.Fprint(out, table.View(outputStyles()))
	return nil
}

// runSearch resolves a term against the first listing page, then remotely.
func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.Resolver.PageSize
	}
	px := newPokedex()

	listing, err := px.Listing.Load(cmd.Context(), limit, 0)
	if err != nil && !warnPartial(cmd, err) {
		return fmt.Errorf("failed to load listing: %w", err)
	}

	res, err := px.Search.Search(cmd.Context(), args[0], listing)
	if err != nil {
		return lookupError(args[0], err)
	}
	logging.Search("search %q matched %d via %s", args[0], len(res.Matches), res.Source)

	if len(res.Matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matches.")
		return nil
	}
	table := ui.NewSimpleTable("Matches", []string{"Name", "Image", "Source"})
	for _, r := range res.Matches {
		table.AddRow(r.Name, r.ImageURL, res.Source.String())
	}
	fmt.Fprint(cmd.OutOrStdout(), table.View(outputStyles()))
	return nil
}

// lookupError turns a not-found lookup into a short user-facing message.
func lookupError(name string, err error) error {
	if errors.Is(err, catalog.ErrNotFound) {
		return fmt.Errorf("pokemon %q not found", pokedex.NormalizeName(name))
	}
	return err
}
