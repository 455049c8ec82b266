package cli

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gilab/labsite/internal/client/models"
	"github.com/gilab/labsite/internal/client/render"
)

const defaultRecent = 5

func (a *App) printPublication(p models.Publication) {
	a.println("  " + titleStyle.Render(p.Title))
	if line := render.PlainText(p.AuthorLine()); line != "" {
		a.println("    " + line)
	}
	if venue := p.Venue(); venue != "" {
		a.println("    " + subtleStyle.Render(fmt.Sprintf("%s, %d", venue, p.Year)))
	}
	if p.PDFURL != nil {
		a.println("    pdf: " + *p.PDFURL)
	}
}

// Publications lists publications grouped by year; an argument limits the
// list to that year.
func (a *App) Publications(ctx context.Context, args []string) error {
	a.Navigate(RouteResearch)

	year := 0
	if len(args) > 0 {
		y, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("year %q: %w", args[0], err)
		}
		year = y
	}

	groups, err := a.content.PublicationsByYear(ctx)
	if err != nil {
		return err
	}
	shown := 0
	for _, g := range groups {
		if year != 0 && int(g.Year) != year {
			continue
		}
		a.heading(strconv.Itoa(int(g.Year)))
		for _, p := range g.Publications {
			a.printPublication(p)
		}
		shown++
	}
	if shown == 0 {
		a.println(subtleStyle.Render("No publications"))
	}
	return nil
}

// Recent lists the newest publications as on the home page.
func (a *App) Recent(ctx context.Context, args []string) error {
	a.Navigate(RouteHome)

	limit := defaultRecent
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("count %q: must be a non-negative number", args[0])
		}
		limit = n
	}

	pubs, err := a.content.RecentPublications(ctx, limit)
	if err != nil {
		return err
	}
	a.heading("Recent publications")
	for _, p := range pubs {
		a.printPublication(p)
	}
	return nil
}

func (a *App) Members(ctx context.Context) error {
	a.Navigate(RouteMembers)

	members, err := a.content.Members(ctx)
	if err != nil {
		return err
	}
	groups := members.Groups()
	if len(groups) == 0 {
		a.println(subtleStyle.Render("No members"))
	}
	for _, g := range groups {
		a.heading(g.Title)
		for _, m := range g.Members {
			line := "  " + titleStyle.Render(m.Name)
			if m.Degree != "" {
				line += " " + subtleStyle.Render("("+m.Degree+")")
			}
			a.println(line)
			if m.ResearchInterests != nil && *m.ResearchInterests != "" {
				a.println("    " + *m.ResearchInterests)
			}
			if m.Email != nil && *m.Email != "" {
				a.println("    " + *m.Email)
			}
		}
	}
	return nil
}

// News lists the news, or shows one item when given its id.
func (a *App) News(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return a.newsItem(ctx, args[0])
	}
	a.Navigate(RouteNews)

	items, err := a.content.News(ctx)
	if err != nil {
		return err
	}
	a.heading("News")
	for _, n := range items {
		a.printf("  %s  %s  %s\n", subtleStyle.Render(n.PublishedAt.Format("2006-01-02")), titleStyle.Render(n.Title), subtleStyle.Render("#"+n.ID))
		if n.Summary != nil && *n.Summary != "" {
			a.println("    " + *n.Summary)
		}
	}
	return nil
}

func (a *App) newsItem(ctx context.Context, id string) error {
	a.Navigate(RouteNews + "/" + id)

	item, err := a.content.NewsByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		a.println(warnStyle.Render("News not found"))
		return nil
	}
	a.heading(item.Title)
	a.println(subtleStyle.Render(item.PublishedAt.Format("2006-01-02")))
	a.println(render.PlainText(render.Markup(item.Content)))
	return nil
}

// Lab shows the contact and access page.
func (a *App) Lab(ctx context.Context) error {
	a.Navigate(RouteAccess)

	info, err := a.content.LabInfo(ctx)
	if err != nil {
		return err
	}
	if info == nil {
		a.println(subtleStyle.Render("Lab information has not been set up yet"))
		return nil
	}
	a.heading(info.LabName)
	a.printf("%s, %s\n", info.Department, info.University)
	a.printf("PI: %s (%s)\n", info.PrincipalInvestigator, info.PITitle)
	a.printf("Address: %s\n", strings.TrimSpace(strings.Join(nonEmpty(info.Address, models.Deref(info.Building), models.Deref(info.Room)), ", ")))
	a.printf("Contact: %s\n", info.ContactEmail)
	if phone := models.Deref(info.ContactPhone); phone != "" {
		a.printf("Phone: %s\n", phone)
	}
	if hours := models.Deref(info.OfficeHours); hours != "" {
		a.printf("Office hours: %s\n", hours)
	}
	return nil
}

func (a *App) Areas(ctx context.Context) error {
	a.Navigate(RouteResearch)

	areas, err := a.content.ResearchAreas(ctx)
	if err != nil {
		return err
	}
	areas = slices.Clone(areas)
	slices.SortStableFunc(areas, func(x, y models.ResearchArea) int { return cmp.Compare(x.Order, y.Order) })

	a.heading("Research areas")
	for _, ar := range areas {
		if !ar.IsActive {
			continue
		}
		a.println("  " + titleStyle.Render(ar.Name))
		if d := models.Deref(ar.Description); d != "" {
			a.println("    " + render.PlainText(d))
		}
	}
	return nil
}

// Refresh drops cached public content so the next command reloads it.
func (a *App) Refresh() error {
	a.content.Refresh()
	a.success("Content will be reloaded")
	return nil
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
