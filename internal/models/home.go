package models

// HomeAnimeItem is a homepage catalog entry. It carries more display
// metadata than AnimeShell because the homepage tiles expose year, type
// and a one-line synopsis alongside the usual fields.
type HomeAnimeItem struct {
	ID         int
	Title      string
	Thumbnail  string
	Year       string
	Type       string
	Status     string
	Info       string
	UpdateInfo string
}

// ScheduleDay is one column of the weekly broadcast schedule.
type ScheduleDay struct {
	AnimeList []HomeAnimeItem
}

// Category is a titled homepage section (e.g. 日本动漫, 国产动漫).
type Category struct {
	Name       string
	CategoryID int
	AnimeList  []HomeAnimeItem
}

// RankingItem is one row of a popularity ranking. Illustrated rows carry
// Info and Thumbnail; plain rows only have the cleaned title and heat.
type RankingItem struct {
	Rank      int
	ID        int
	Title     string
	Info      string
	Heat      int
	Thumbnail string
}

// RankingList is a titled ranking block (e.g. 周排行, 月排行).
type RankingList struct {
	Name  string
	Items []RankingItem
}

// HomePage aggregates every parsed homepage section.
type HomePage struct {
	RecentUpdates  []HomeAnimeItem
	Categories     []Category
	WeeklySchedule []ScheduleDay
	Rankings       []RankingList
}
