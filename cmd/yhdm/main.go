package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/yhdm-go/yhdm/internal/decrypt"
	"github.com/yhdm-go/yhdm/internal/models"
	"github.com/yhdm-go/yhdm/internal/scraper"
	"github.com/yhdm-go/yhdm/internal/util"
)

func main() {
	debugFlag := flag.Bool("debug", false, "enable debug mode")
	episodeFlag := flag.Int("episode", 1, "episode number (nid) to resolve")
	flag.Parse()

	util.SetDebugMode(*debugFlag)
	util.InitLogger()
	logger := util.Logger

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: yhdm [-debug] [-episode N] <keyword>")
		os.Exit(2)
	}
	keyword := flag.Arg(0)

	client := scraper.NewClient(scraper.WithLogger(logger))

	suggestions, err := client.GetSearchSuggestions(keyword)
	if err != nil {
		logger.Warn("suggestion lookup failed", "err", err)
	}
	for _, s := range suggestions {
		logger.Debug("suggestion", "id", s.ID, "name", s.Name)
	}

	results, err := client.SearchAnime(keyword, "", "", 1)
	if err != nil {
		logger.Fatal("search failed", "err", err)
	}
	if len(results) == 0 {
		logger.Fatal("no anime found", "keyword", keyword)
	}

	selected, err := pickAnime(results)
	if err != nil {
		logger.Fatal("selection aborted", "err", err)
	}

	anime, err := client.GetAnimeDetail(selected.ID)
	if err != nil {
		logger.Fatal("failed to fetch detail", "err", err)
	}

	fmt.Printf("%s (%s, %s)\n", anime.Name, anime.Year, anime.Type)
	fmt.Printf("status: %s  latest episode: %d\n", anime.Status, anime.LatestEpisode)
	if anime.Description != "" {
		fmt.Printf("%s\n", anime.Description)
	}
	for _, line := range anime.StreamLines {
		fmt.Printf("line %d: %d episodes\n", line.ID, len(line.Episodes))
	}

	if len(anime.StreamLines) == 0 {
		logger.Fatal("anime has no stream lines")
	}

	resolver := decrypt.NewResolver(
		decrypt.WithBaseURL(client.BaseURL()),
		decrypt.WithLogger(logger),
	)
	stream, err := resolver.GetVideoURL(anime.ID, *episodeFlag, anime.StreamLines[0].ID)
	if err != nil {
		logger.Fatal("failed to resolve stream url", "err", err)
	}

	fmt.Printf("video url: %s\n", stream.URL)
	if stream.NextURL != "" {
		fmt.Printf("next episode url: %s\n", stream.NextURL)
	}
}

func pickAnime(results []models.AnimeShell) (*models.AnimeShell, error) {
	if len(results) == 1 {
		return &results[0], nil
	}
	idx, err := fuzzyfinder.Find(
		results,
		func(i int) string {
			if results[i].Status != "" {
				return fmt.Sprintf("%s  [%s]", results[i].Name, results[i].Status)
			}
			return results[i].Name
		},
	)
	if err != nil {
		return nil, err
	}
	return &results[idx], nil
}
