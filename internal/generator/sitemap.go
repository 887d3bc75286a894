package generator

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

func buildSitemap(baseURL string, pages []sitemapEntry) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")

	entries := make([]sitemapEntry, 0, len(pages))
	seen := map[string]struct{}{}
	for _, page := range pages {
		location := base + page.Location
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		entries = append(entries, sitemapEntry{Location: location, LastMod: page.LastMod})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		b.WriteString("  <url>\n")
		b.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", entry.Location))
		if !entry.LastMod.IsZero() {
			b.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		b.WriteString("  </url>\n")
	}
	b.WriteString("</urlset>\n")
	return b.String()
}

func buildRobots(baseURL string, includeSitemap bool) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	if includeSitemap {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Sitemap: %s/sitemap.xml\n", strings.TrimRight(strings.TrimSpace(baseURL), "/")))
	}
	return b.String()
}
