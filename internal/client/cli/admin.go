package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gilab/labsite/internal/client/models"
	"github.com/gilab/labsite/internal/client/render"
)

var ErrUsage = errors.New("usage")

// Pending lists accounts awaiting approval.
func (a *App) Pending(ctx context.Context) error {
	if err := a.guard(ctx, true); err != nil {
		return err
	}
	a.Navigate(RouteAdmin)

	users, err := a.admin.PendingUsers(ctx)
	if err != nil {
		return err
	}
	a.heading("Pending users")
	if len(users) == 0 {
		a.println(subtleStyle.Render("Nobody is waiting for approval"))
		return nil
	}
	for _, u := range users {
		a.printf("  %s  %s %s <%s>  %s\n",
			subtleStyle.Render(u.ID), u.FirstName, u.LastName, u.Email,
			subtleStyle.Render(u.CreatedAt.Format("2006-01-02")))
	}
	return nil
}

func (a *App) Approve(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: approve <user-id>", ErrUsage)
	}
	if err := a.guard(ctx, true); err != nil {
		return err
	}
	if err := a.admin.ApproveUser(ctx, args[0]); err != nil {
		return err
	}
	a.success("Approved " + args[0])
	return nil
}

// Publish walks through the new-publication form and posts it. On success
// the App moves to the research page.
func (a *App) Publish(ctx context.Context) error {
	if err := a.guard(ctx, true); err != nil {
		return err
	}
	a.Navigate(RoutePublish)

	var req models.CreatePublicationRequest
	pub := &req.Publication
	var err error

	if pub.Title, err = getSimpleText(a.reader, "Title", a.out); err != nil {
		return err
	}
	if pub.Type, err = getSimpleText(a.reader, "Type (journal/conference)", a.out); err != nil {
		return err
	}
	pub.Type = strings.ToLower(pub.Type)
	venue, err := getSimpleText(a.reader, "Journal or conference name", a.out)
	if err != nil {
		return err
	}
	if venue != "" {
		if pub.Type == models.PublicationConference {
			pub.Conference = &venue
		} else {
			pub.Journal = &venue
		}
	}
	if pub.Year, err = GetInt(a.reader, "Year", a.out); err != nil {
		return err
	}
	if pub.Abstract, err = GetMultiline(a.reader, "Abstract (**bold** allowed)", a.out); err != nil {
		return err
	}
	if pub.PDFURL, err = GetOptionalText(a.reader, "PDF URL", a.out); err != nil {
		return err
	}
	if pub.ImageURL, err = GetOptionalText(a.reader, "Image URL", a.out); err != nil {
		return err
	}

	a.println("Authors in order, one per line as: name [homepage]")
	for i := 0; ; i++ {
		line, err := getSimpleText(a.reader, fmt.Sprintf("Author %d (empty to finish)", i+1), a.out)
		if err != nil {
			return err
		}
		if line == "" {
			break
		}
		author := models.AuthorInput{Name: line, Order: i}
		if name, home, ok := cutLastField(line); ok && strings.HasPrefix(home, "http") {
			author.Name = name
			author.Homepage = &home
		}
		req.Authors = append(req.Authors, author)
	}

	a.heading("Preview")
	a.println(titleStyle.Render(pub.Title))
	a.println(render.PlainText(render.Abstract(pub.Abstract)))

	if err := a.admin.CreatePublication(ctx, req); err != nil {
		return err
	}
	a.success("Publication created")
	a.Navigate(RouteResearch)
	return nil
}

// Settings edits the lab information. Every prompt shows the current value;
// an empty answer keeps it.
func (a *App) Settings(ctx context.Context) error {
	if err := a.guard(ctx, true); err != nil {
		return err
	}
	a.Navigate(RouteSettings)

	current, err := a.content.LabInfo(ctx)
	if err != nil {
		return err
	}
	info := models.LabInfo{}
	if current != nil {
		info = *current
	}

	fields := []struct {
		label string
		dst   *string
	}{
		{"Lab name", &info.LabName},
		{"Principal investigator", &info.PrincipalInvestigator},
		{"PI title", &info.PITitle},
		{"Address", &info.Address},
		{"University", &info.University},
		{"Department", &info.Department},
		{"Contact email", &info.ContactEmail},
	}
	for _, f := range fields {
		prompt := f.label
		if *f.dst != "" {
			prompt += " [" + *f.dst + "]"
		}
		v, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = v
		}
	}

	optional := []struct {
		label string
		dst   **string
	}{
		{"Contact phone", &info.ContactPhone},
		{"Office hours", &info.OfficeHours},
		{"Website", &info.Website},
	}
	for _, f := range optional {
		prompt := f.label
		if *f.dst != nil && **f.dst != "" {
			prompt += " [" + **f.dst + "]"
		}
		v, err := GetOptionalText(a.reader, prompt, a.out)
		if err != nil {
			return err
		}
		if v != nil {
			*f.dst = v
		}
	}

	if err := a.admin.UpdateLabInfo(ctx, info); err != nil {
		return err
	}
	a.success("Lab information saved")
	return nil
}

// cutLastField splits "Jane Doe https://jd.example" into the name and the
// last whitespace-separated field.
func cutLastField(s string) (string, string, bool) {
	i := strings.LastIndexAny(s, " \t")
	if i < 0 {
		return s, "", false
	}
	return strings.TrimSpace(s[:i]), s[i+1:], true
}
