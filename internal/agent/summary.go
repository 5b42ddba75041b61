package agent

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/John-Robertt/xbmcnfo/internal/domain"
)

const summarySep = "---------------------"

// LogSummary 以逐行 info 日志输出 md 的全部字段；未设置的标量输出 "-"。
func LogSummary(log hclog.Logger, md *domain.Metadata) {
	log.Info(summarySep)
	log.Info("Movie nfo Information")
	log.Info(summarySep)

	line := func(label, v string) {
		if v == "" {
			v = "-"
		}
		log.Info(label + ": " + v)
	}
	line("ID", md.ID)
	line("Title", md.Title)
	line("Sort Title", md.SortTitle)
	line("Year", optional(md.Year, strconv.Itoa))
	line("Original", md.OriginalTitle)
	line("Rating", optional(md.Rating, func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }))
	line("Content", md.ContentRating)
	line("Studio", md.Studio)
	line("Premiere", optional(md.ReleaseDate, func(v time.Time) string { return v.Format(time.DateTime) }))
	line("Tagline", md.Tagline)
	line("Summary", md.Summary)

	list := func(label string, items []string) {
		log.Info(label + ":")
		for _, s := range items {
			log.Info("\t" + s)
		}
	}
	list("Writers", md.Writers)
	list("Directors", md.Directors)
	list("Genres", md.Genres)
	list("Countries", md.Countries)
	list("Collections", md.Collections)

	line("Duration", optional(md.DurationMs, func(ms int64) string { return fmt.Sprintf("%d min", ms/60000) }))

	log.Info("Actors:")
	for _, r := range md.Roles {
		log.Info("\t" + r.Name + " > " + r.Role)
	}
	log.Info(summarySep)
}

func optional[T any](v *T, format func(T) string) string {
	if v == nil {
		return ""
	}
	return format(*v)
}
