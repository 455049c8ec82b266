package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gilab/labsite/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedContent(ls *labServer) {
	ls.pubs = []models.Publication{
		{ID: "p1", Title: "Graph Kernels", Year: 2024, Type: models.PublicationJournal, Journal: models.Ptr("J. Graphs"),
			Authors: []models.Author{{Name: "Ada Lovelace"}, {Name: "Alan Turing"}}, PDFURL: models.Ptr("https://lab.example/p1.pdf")},
		{ID: "p2", Title: "Sparse Attention", Year: 2023, Type: models.PublicationConference, Conference: models.Ptr("NeurIPS"),
			AuthorsHTML: models.Ptr("<b>Grace Hopper</b>, Ada Lovelace")},
		{ID: "p3", Title: "Older Work", Year: 2019, Type: models.PublicationJournal},
	}
	ls.members = models.GroupedMembers{
		PhD:     []models.Member{{ID: "m1", Name: "Kim Lee", Degree: "PhD", ResearchInterests: models.Ptr("graphs")}},
		Masters: []models.Member{{ID: "m2", Name: "Sam Park", Degree: "MS", Email: models.Ptr("sam@lab.example")}},
	}
	ls.news = []models.News{
		{ID: "n1", Title: "Old news", Content: "plain", PublishedAt: models.Timestamp{Time: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)}},
		{ID: "n2", Title: "Paper accepted", Content: "<p>We got <b>in</b></p><script>x()</script>", Summary: models.Ptr("Accepted at NeurIPS"),
			PublishedAt: models.Timestamp{Time: time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)}},
	}
	ls.areas = []models.ResearchArea{
		{ID: "a2", Name: "Vision", Order: 2, IsActive: true},
		{ID: "a1", Name: "Graphs", Order: 1, IsActive: true, Description: models.Ptr("Graph <i>learning</i>")},
		{ID: "a3", Name: "Retired", Order: 0, IsActive: false},
	}
}

func TestPublications(t *testing.T) {
	ls := newLabServer(t)
	seedContent(ls)
	a, out := newTestApp(t, ls, "")
	ctx := context.Background()

	require.NoError(t, a.Publications(ctx, nil))
	got := out.String()
	assert.Equal(t, RouteResearch, a.Route())
	assert.Less(t, strings.Index(got, "2024"), strings.Index(got, "2023"))
	assert.Less(t, strings.Index(got, "2023"), strings.Index(got, "2019"))
	assert.Contains(t, got, "Ada Lovelace, Alan Turing")
	assert.Contains(t, got, "Grace Hopper, Ada Lovelace")
	assert.NotContains(t, got, "<b>")
	assert.Contains(t, got, "NeurIPS, 2023")
	assert.Contains(t, got, "pdf: https://lab.example/p1.pdf")

	out.Reset()
	require.NoError(t, a.Publications(ctx, []string{"2023"}))
	assert.Contains(t, out.String(), "Sparse Attention")
	assert.NotContains(t, out.String(), "Graph Kernels")

	out.Reset()
	require.NoError(t, a.Publications(ctx, []string{"1999"}))
	assert.Contains(t, out.String(), "No publications")

	assert.Error(t, a.Publications(ctx, []string{"latest"}))
	assert.Equal(t, 1, ls.hitCount("/api/publications"))
}

func TestRecent(t *testing.T) {
	ls := newLabServer(t)
	seedContent(ls)
	a, out := newTestApp(t, ls, "")
	ctx := context.Background()

	require.NoError(t, a.Recent(ctx, []string{"2"}))
	got := out.String()
	assert.Equal(t, RouteHome, a.Route())
	assert.Contains(t, got, "Graph Kernels")
	assert.Contains(t, got, "Sparse Attention")
	assert.NotContains(t, got, "Older Work")

	assert.Error(t, a.Recent(ctx, []string{"-1"}))
}

func TestMembers(t *testing.T) {
	ls := newLabServer(t)
	seedContent(ls)
	a, out := newTestApp(t, ls, "")

	require.NoError(t, a.Members(context.Background()))
	got := out.String()
	assert.Less(t, strings.Index(got, "Ph.D. Students"), strings.Index(got, "Master's Students"))
	assert.Contains(t, got, "Kim Lee (PhD)")
	assert.Contains(t, got, "graphs")
	assert.Contains(t, got, "sam@lab.example")
	assert.NotContains(t, got, "Alumni")
}

func TestNews(t *testing.T) {
	ls := newLabServer(t)
	seedContent(ls)
	a, out := newTestApp(t, ls, "")
	ctx := context.Background()

	require.NoError(t, a.News(ctx, nil))
	got := out.String()
	assert.Less(t, strings.Index(got, "Paper accepted"), strings.Index(got, "Old news"))
	assert.Contains(t, got, "2024-05-06")
	assert.Contains(t, got, "Accepted at NeurIPS")

	out.Reset()
	require.NoError(t, a.News(ctx, []string{"n2"}))
	assert.Equal(t, RouteNews+"/n2", a.Route())
	assert.Contains(t, out.String(), "We got in")
	assert.NotContains(t, out.String(), "x()")

	out.Reset()
	require.NoError(t, a.News(ctx, []string{"missing"}))
	assert.Contains(t, out.String(), "News not found")
	assert.Equal(t, 1, ls.hitCount("/api/news"))
}

func TestLab(t *testing.T) {
	ls := newLabServer(t)
	a, out := newTestApp(t, ls, "")
	ctx := context.Background()

	require.NoError(t, a.Lab(ctx))
	assert.Contains(t, out.String(), "has not been set up")
	assert.Equal(t, RouteAccess, a.Route())

	ls.mu.Lock()
	ls.lab = &models.LabInfo{
		LabName: "Graph Lab", PrincipalInvestigator: "Ada Lovelace", PITitle: "Professor",
		Address: "1 Main St", Building: models.Ptr("Eng Hall"), Room: models.Ptr(""),
		University: "Example U", Department: "CS", ContactEmail: "lab@lab.example",
		OfficeHours: models.Ptr("Mon 10-12"),
	}
	ls.mu.Unlock()
	require.NoError(t, a.Refresh())

	out.Reset()
	require.NoError(t, a.Lab(ctx))
	got := out.String()
	assert.Contains(t, got, "Graph Lab")
	assert.Contains(t, got, "CS, Example U")
	assert.Contains(t, got, "Address: 1 Main St, Eng Hall\n")
	assert.Contains(t, got, "Office hours: Mon 10-12")
	assert.NotContains(t, got, "Phone:")
}

func TestAreas(t *testing.T) {
	ls := newLabServer(t)
	seedContent(ls)
	a, out := newTestApp(t, ls, "")

	require.NoError(t, a.Areas(context.Background()))
	got := out.String()
	assert.Less(t, strings.Index(got, "Graphs"), strings.Index(got, "Vision"))
	assert.Contains(t, got, "Graph learning")
	assert.NotContains(t, got, "Retired")
}

func TestRefresh_ReloadsContent(t *testing.T) {
	ls := newLabServer(t)
	seedContent(ls)
	a, out := newTestApp(t, ls, "")
	ctx := context.Background()

	require.NoError(t, a.Members(ctx))
	require.NoError(t, a.Members(ctx))
	assert.Equal(t, 1, ls.hitCount("/api/members"))

	require.NoError(t, a.Refresh())
	assert.Contains(t, out.String(), "Content will be reloaded")
	require.NoError(t, a.Members(ctx))
	assert.Equal(t, 2, ls.hitCount("/api/members"))
}
