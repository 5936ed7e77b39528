package site

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"folio/internal/models"
)

// fakePages is an in-memory PageSource.
type fakePages struct {
	byID     map[uuid.UUID]*models.Page
	children map[uuid.UUID][]models.Page
	search   []models.Page
	err      error

	lastQuery   string
	lastIndexed []models.PageType
}

func (f *fakePages) FindByID(_ context.Context, id uuid.UUID) (*models.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byID[id], nil
}

func (f *fakePages) FindVisibleChild(_ context.Context, parentID uuid.UUID, t models.PageType, slug string) (*models.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.children[parentID] {
		if p.Type == t && p.Slug == slug && p.IsVisible() {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakePages) ChildrenOf(_ context.Context, parentID uuid.UUID, t models.PageType) ([]models.Page, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.Page
	for _, p := range f.children[parentID] {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePages) Search(_ context.Context, query string, indexed []models.PageType) ([]models.Page, error) {
	f.lastQuery = query
	f.lastIndexed = indexed
	if f.err != nil {
		return nil, f.err
	}
	return f.search, nil
}

// fakeImages is an in-memory ImageSource.
type fakeImages map[uuid.UUID]*models.Image

func (f fakeImages) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Image, error) {
	out := make(map[uuid.UUID]*models.Image)
	for _, id := range ids {
		if img, ok := f[id]; ok {
			out[id] = img
		}
	}
	return out, nil
}

type cdn struct{}

func (cdn) FileURL(key string) string { return "https://cdn.example.com/" + key }

// fixture is a small site: home, blog index and portfolio index roots.
type fixture struct {
	pages  *fakePages
	images fakeImages
	roots  Roots
	site   *Site
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	home := &models.Page{
		ID: uuid.New(), Type: models.PageTypeHome, Title: "Home", Slug: "home", Live: true,
		Home: &models.HomeDetail{AuthorName: "Ada", Tagline: "Writes code", Bio: "<p>Hi</p>"},
	}
	blog := &models.Page{ID: uuid.New(), Type: models.PageTypeBlogIndex, ParentID: &home.ID, Title: "Blog", Slug: "blog", Live: true}
	portfolio := &models.Page{ID: uuid.New(), Type: models.PageTypePortfolioIndex, ParentID: &home.ID, Title: "Portfolio", Slug: "portfolio", Live: true}

	f := &fixture{
		pages: &fakePages{
			byID:     map[uuid.UUID]*models.Page{home.ID: home, blog.ID: blog, portfolio.ID: portfolio},
			children: map[uuid.UUID][]models.Page{},
		},
		images: fakeImages{},
		roots: Roots{
			Home:      Ref{ID: home.ID, Slug: home.Slug, Title: home.Title},
			Blog:      Ref{ID: blog.ID, Slug: blog.Slug, Title: blog.Title},
			Portfolio: Ref{ID: portfolio.ID, Slug: portfolio.Slug, Title: portfolio.Title},
		},
	}
	f.site = New(f.pages, f.images, cdn{}, f.roots, Settings{
		SiteName:           "folio",
		BlogPageSize:       1,
		HomeBlogLimit:      3,
		HomePortfolioLimit: 4,
		SearchPageSize:     10,
	})
	return f
}

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// addPost appends a post published `day` days after Jan 1 2024.
func (f *fixture) addPost(t models.PageType, title string, day int, live, restricted bool) models.Page {
	parent := f.roots.Blog.ID
	if t == models.PageTypePortfolioPost {
		parent = f.roots.Portfolio.ID
	}
	published := base.AddDate(0, 0, day)
	p := models.Page{
		ID:               uuid.New(),
		Type:             t,
		ParentID:         &parent,
		Title:            title,
		Slug:             strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Live:             live,
		Restricted:       restricted,
		FirstPublishedAt: &published,
	}
	switch t {
	case models.PageTypeBlogPost:
		p.BlogPost = &models.BlogPostDetail{Date: published, Intro: title + " intro", ReadingMinutes: 4}
	case models.PageTypePortfolioPost:
		p.Portfolio = &models.PortfolioPostDetail{Intro: title + " intro", GithubLink: "https://github.com/ada/" + p.Slug}
	}
	f.pages.children[parent] = append(f.pages.children[parent], p)
	return p
}

func titles(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type finder map[models.PageType]*models.Page

func (f finder) FirstByType(_ context.Context, t models.PageType) (*models.Page, error) {
	return f[t], nil
}

func TestResolveRoots(t *testing.T) {
	home := &models.Page{ID: uuid.New(), Slug: "home", Title: "Home"}
	blog := &models.Page{ID: uuid.New(), Slug: "writing", Title: "Writing"}
	portfolio := &models.Page{ID: uuid.New(), Slug: "work", Title: "Work"}

	roots, err := ResolveRoots(context.Background(), finder{
		models.PageTypeHome:           home,
		models.PageTypeBlogIndex:      blog,
		models.PageTypePortfolioIndex: portfolio,
	})
	if err != nil {
		t.Fatalf("ResolveRoots: %v", err)
	}
	if roots.Home.ID != home.ID || roots.Blog.Slug != "writing" || roots.Portfolio.Title != "Work" {
		t.Errorf("unexpected roots: %+v", roots)
	}

	_, err = ResolveRoots(context.Background(), finder{models.PageTypeHome: home})
	if err == nil || !strings.Contains(err.Error(), "blog_index") {
		t.Errorf("expected error naming the missing root, got %v", err)
	}
}

func TestURLFor(t *testing.T) {
	f := newFixture(t)
	post := f.addPost(models.PageTypeBlogPost, "First Post", 1, true, false)
	work := f.addPost(models.PageTypePortfolioPost, "Tool", 1, true, false)

	tests := []struct {
		page *models.Page
		want string
	}{
		{&models.Page{Type: models.PageTypeHome}, "/"},
		{&models.Page{Type: models.PageTypeBlogIndex}, "/blog"},
		{&models.Page{Type: models.PageTypePortfolioIndex}, "/portfolio"},
		{&post, "/blog/first-post"},
		{&work, "/portfolio/tool"},
	}
	for _, tt := range tests {
		if got := f.site.URLFor(tt.page); got != tt.want {
			t.Errorf("URLFor(%s) = %q, want %q", tt.page.Type, got, tt.want)
		}
	}
}

func TestHomeHighlights(t *testing.T) {
	f := newFixture(t)
	for i, title := range []string{"B1", "B2", "B3", "B4"} {
		f.addPost(models.PageTypeBlogPost, title, i+1, true, false)
	}
	f.addPost(models.PageTypeBlogPost, "Draft", 10, false, false)
	f.addPost(models.PageTypeBlogPost, "Private", 11, true, true)
	for i, title := range []string{"P1", "P2", "P3", "P4", "P5"} {
		f.addPost(models.PageTypePortfolioPost, title, i+1, true, false)
	}
	f.addPost(models.PageTypePortfolioPost, "Hidden", 20, false, false)

	view, err := f.site.Root(context.Background(), models.PageTypeHome, nil)
	if err != nil {
		t.Fatalf("Root(home): %v", err)
	}
	if view.Template != "home" || view.Number != 0 {
		t.Errorf("unexpected view: template=%q number=%d", view.Template, view.Number)
	}
	data, ok := view.Data.(HomeContext)
	if !ok {
		t.Fatalf("expected HomeContext, got %T", view.Data)
	}

	if got, want := titles(data.LatestBlogPosts), []string{"B4", "B3", "B2"}; !equal(got, want) {
		t.Errorf("blog highlights = %v, want %v", got, want)
	}
	if got, want := titles(data.PortfolioPosts), []string{"P5", "P4", "P3", "P2"}; !equal(got, want) {
		t.Errorf("portfolio highlights = %v, want %v", got, want)
	}
	if data.AuthorName != "Ada" || data.Tagline != "Writes code" || data.Bio != "<p>Hi</p>" {
		t.Errorf("home detail not carried: %+v", data)
	}
	if data.BlogURL != "/blog" || data.PortfolioURL != "/portfolio" {
		t.Errorf("navigation URLs: %q %q", data.BlogURL, data.PortfolioURL)
	}
}

func TestHomeWithNoPosts(t *testing.T) {
	f := newFixture(t)
	view, err := f.site.Root(context.Background(), models.PageTypeHome, nil)
	if err != nil {
		t.Fatalf("Root(home): %v", err)
	}
	data := view.Data.(HomeContext)
	if len(data.LatestBlogPosts) != 0 || len(data.PortfolioPosts) != 0 {
		t.Errorf("expected empty highlights, got %d and %d", len(data.LatestBlogPosts), len(data.PortfolioPosts))
	}
}

func TestBlogIndexPagination(t *testing.T) {
	f := newFixture(t)
	f.addPost(models.PageTypeBlogPost, "Jan 1", 0, true, false)
	f.addPost(models.PageTypeBlogPost, "Jan 3", 2, true, false)
	f.addPost(models.PageTypeBlogPost, "Draft", 5, false, false)
	f.addPost(models.PageTypeBlogPost, "Jan 2", 1, true, false)

	tests := []struct {
		name      string
		raw       string
		wantPage  int
		wantTitle string
	}{
		{name: "absent", raw: "", wantPage: 1, wantTitle: "Jan 3"},
		{name: "in range", raw: "2", wantPage: 2, wantTitle: "Jan 2"},
		{name: "last", raw: "3", wantPage: 3, wantTitle: "Jan 1"},
		{name: "not a number", raw: "abc", wantPage: 1, wantTitle: "Jan 3"},
		{name: "beyond last", raw: "99", wantPage: 3, wantTitle: "Jan 1"},
		{name: "zero", raw: "0", wantPage: 3, wantTitle: "Jan 1"},
		{name: "negative", raw: "-4", wantPage: 3, wantTitle: "Jan 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := url.Values{}
			if tt.raw != "" {
				query.Set("page", tt.raw)
			}
			view, err := f.site.Root(context.Background(), models.PageTypeBlogIndex, query)
			if err != nil {
				t.Fatalf("Root(blog_index): %v", err)
			}
			data := view.Data.(BlogIndexContext)
			if view.Number != tt.wantPage || data.Posts.Number != tt.wantPage {
				t.Errorf("page = %d/%d, want %d", view.Number, data.Posts.Number, tt.wantPage)
			}
			if data.Posts.NumPages != 3 || data.Posts.Count != 3 {
				t.Errorf("NumPages=%d Count=%d, want 3 and 3", data.Posts.NumPages, data.Posts.Count)
			}
			if got := titles(data.Posts.Items); len(got) != 1 || got[0] != tt.wantTitle {
				t.Errorf("items = %v, want [%s]", got, tt.wantTitle)
			}
		})
	}
}

func TestBlogIndexEmpty(t *testing.T) {
	f := newFixture(t)
	f.addPost(models.PageTypeBlogPost, "Draft", 1, false, false)

	view, err := f.site.Root(context.Background(), models.PageTypeBlogIndex, url.Values{"page": {"7"}})
	if err != nil {
		t.Fatalf("Root(blog_index): %v", err)
	}
	posts := view.Data.(BlogIndexContext).Posts
	if posts.Number != 1 || posts.NumPages != 1 || len(posts.Items) != 0 {
		t.Errorf("expected empty page 1 of 1, got %d of %d with %d items", posts.Number, posts.NumPages, len(posts.Items))
	}
}

func TestPortfolioIndexOrdered(t *testing.T) {
	f := newFixture(t)
	f.addPost(models.PageTypePortfolioPost, "Old", 1, true, false)
	f.addPost(models.PageTypePortfolioPost, "New", 9, true, false)
	f.addPost(models.PageTypePortfolioPost, "Secret", 5, true, true)

	view, err := f.site.Root(context.Background(), models.PageTypePortfolioIndex, nil)
	if err != nil {
		t.Fatalf("Root(portfolio_index): %v", err)
	}
	data := view.Data.(PortfolioIndexContext)
	if got, want := titles(data.Posts), []string{"New", "Old"}; !equal(got, want) {
		t.Errorf("portfolio = %v, want %v", got, want)
	}
	if data.Posts[0].GithubLink != "https://github.com/ada/new" {
		t.Errorf("GithubLink = %q", data.Posts[0].GithubLink)
	}
}

func TestRootNotVisible(t *testing.T) {
	f := newFixture(t)
	f.pages.byID[f.roots.Blog.ID].Live = false

	_, err := f.site.Root(context.Background(), models.PageTypeBlogIndex, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// TestHiddenSection verifies that hiding a section index, or the home
// above it, hides every post of that section from all listings.
func TestHiddenSection(t *testing.T) {
	tests := []struct {
		name     string
		hide     func(f *fixture)
		homeOpen bool
	}{
		{"restricted blog index", func(f *fixture) { f.pages.byID[f.roots.Blog.ID].Restricted = true }, true},
		{"unpublished blog index", func(f *fixture) { f.pages.byID[f.roots.Blog.ID].Live = false }, true},
		{"restricted home", func(f *fixture) { f.pages.byID[f.roots.Home.ID].Restricted = true }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			secret := f.addPost(models.PageTypeBlogPost, "Secret", 1, true, false)
			f.addPost(models.PageTypePortfolioPost, "Tool", 1, true, false)
			f.pages.search = []models.Page{secret}
			tt.hide(f)

			if _, err := f.site.Root(ctx, models.PageTypeBlogIndex, nil); !errors.Is(err, ErrNotFound) {
				t.Errorf("blog index: expected ErrNotFound, got %v", err)
			}
			if _, err := f.site.Post(ctx, models.PageTypeBlogPost, secret.Slug, nil); !errors.Is(err, ErrNotFound) {
				t.Errorf("post: expected ErrNotFound, got %v", err)
			}

			view, err := f.site.Search(ctx, url.Values{"q": {"secret"}})
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if got := titles(view.Data.(SearchContext).Results.Items); len(got) != 0 {
				t.Errorf("search results = %v, want none", got)
			}

			home, err := f.site.Root(ctx, models.PageTypeHome, nil)
			if !tt.homeOpen {
				if !errors.Is(err, ErrNotFound) {
					t.Errorf("home: expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Root(home): %v", err)
			}
			data := home.Data.(HomeContext)
			if got := titles(data.LatestBlogPosts); len(got) != 0 {
				t.Errorf("blog highlights = %v, want none", got)
			}
			if got, want := titles(data.PortfolioPosts), []string{"Tool"}; !equal(got, want) {
				t.Errorf("portfolio highlights = %v, want %v", got, want)
			}
		})
	}
}

func TestPostRendersBodyAndImages(t *testing.T) {
	f := newFixture(t)
	feed, inline := uuid.New(), uuid.New()
	alt := "Diagram"
	f.images[feed] = &models.Image{ID: feed, Title: "Cover", S3Key: "images/cover.jpg"}
	f.images[inline] = &models.Image{ID: inline, Title: "Figure", S3Key: "images/fig.png", Alt: &alt}

	p := f.addPost(models.PageTypeBlogPost, "Deep Dive", 3, true, false)
	detail := f.pages.children[f.roots.Blog.ID][0].BlogPost
	detail.FeedImageID = &feed
	detail.Body = []models.Block{
		{Kind: models.BlockHeading, Value: "Setup"},
		{Kind: models.BlockImage, ImageID: &inline},
		{Kind: models.BlockParagraph, Value: "<p>Done.</p>"},
	}

	view, err := f.site.Post(context.Background(), models.PageTypeBlogPost, p.Slug, nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if view.Template != "blog_post" {
		t.Errorf("template = %q", view.Template)
	}
	data := view.Data.(PostContext)
	if data.Post.Image == nil || data.Post.Image.URL != "https://cdn.example.com/images/cover.jpg" || data.Post.Image.Alt != "Cover" {
		t.Errorf("feed image = %+v", data.Post.Image)
	}
	body := string(data.Body)
	for _, want := range []string{"<h2>Setup</h2>", `src="https://cdn.example.com/images/fig.png"`, `alt="Diagram"`, "<p>Done.</p>"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if data.ParentURL != "/blog" {
		t.Errorf("ParentURL = %q", data.ParentURL)
	}
}

func TestPostWithoutStorage(t *testing.T) {
	f := newFixture(t)
	feed := uuid.New()
	f.images[feed] = &models.Image{ID: feed, Title: "Cover", S3Key: "cover.jpg"}
	p := f.addPost(models.PageTypePortfolioPost, "Tool", 1, true, false)
	f.pages.children[f.roots.Portfolio.ID][0].Portfolio.FeedImageID = &feed

	s := New(f.pages, nil, nil, f.roots, Settings{})
	view, err := s.Post(context.Background(), models.PageTypePortfolioPost, p.Slug, nil)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	data := view.Data.(PostContext)
	if data.Post.Image != nil {
		t.Errorf("expected no image without storage, got %+v", data.Post.Image)
	}
	if data.ParentURL != "/portfolio" {
		t.Errorf("ParentURL = %q", data.ParentURL)
	}
}

func TestPostNotFound(t *testing.T) {
	f := newFixture(t)
	draft := f.addPost(models.PageTypeBlogPost, "Draft", 1, false, false)
	private := f.addPost(models.PageTypeBlogPost, "Private", 2, true, true)

	for _, slug := range []string{draft.Slug, private.Slug, "missing"} {
		_, err := f.site.Post(context.Background(), models.PageTypeBlogPost, slug, nil)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Post(%q): expected ErrNotFound, got %v", slug, err)
		}
	}
}

func TestRetrievalErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.pages.err = errors.New("connection refused")

	calls := map[string]func() error{
		"home": func() error {
			_, err := f.site.Root(context.Background(), models.PageTypeHome, nil)
			return err
		},
		"post": func() error {
			_, err := f.site.Post(context.Background(), models.PageTypeBlogPost, "x", nil)
			return err
		},
		"search": func() error {
			_, err := f.site.Search(context.Background(), url.Values{"q": {"x"}})
			return err
		},
	}
	for name, call := range calls {
		err := call()
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected a retrieval error, got %v", name, err)
		}
		if err != nil && !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("%s: error does not wrap the cause: %v", name, err)
		}
	}
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	older := f.addPost(models.PageTypeBlogPost, "Go Generics", 1, true, false)
	newer := f.addPost(models.PageTypeBlogPost, "Go Iterators", 5, true, false)
	draft := f.addPost(models.PageTypeBlogPost, "Go Draft", 9, false, false)
	orphanParent := uuid.New()
	orphan := models.Page{
		ID: uuid.New(), Type: models.PageTypeBlogPost, ParentID: &orphanParent,
		Title: "Go Elsewhere", Slug: "go-elsewhere", Live: true, FirstPublishedAt: &base,
	}
	f.pages.search = []models.Page{older, draft, orphan, newer}

	view, err := f.site.Search(context.Background(), url.Values{"q": {"  go  "}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if f.pages.lastQuery != "go" {
		t.Errorf("query not trimmed: %q", f.pages.lastQuery)
	}
	if len(f.pages.lastIndexed) != 1 || f.pages.lastIndexed[0] != models.PageTypeBlogPost {
		t.Errorf("indexed types = %v", f.pages.lastIndexed)
	}
	data := view.Data.(SearchContext)
	if got, want := titles(data.Results.Items), []string{"Go Iterators", "Go Generics"}; !equal(got, want) {
		t.Errorf("results = %v, want %v", got, want)
	}
	if data.Results.Items[0].URL != "/blog/go-iterators" {
		t.Errorf("URL = %q", data.Results.Items[0].URL)
	}
	if view.Template != SearchTemplate || data.Query != "go" {
		t.Errorf("template=%q query=%q", view.Template, data.Query)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	f := newFixture(t)
	f.pages.search = []models.Page{f.addPost(models.PageTypeBlogPost, "Anything", 1, true, false)}

	view, err := f.site.Search(context.Background(), url.Values{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	data := view.Data.(SearchContext)
	if f.pages.lastQuery != "" || f.pages.lastIndexed != nil {
		t.Error("store should not be queried for an empty search")
	}
	if data.Results.Number != 1 || data.Results.NumPages != 1 || len(data.Results.Items) != 0 {
		t.Errorf("expected empty page 1 of 1, got %+v", data.Results)
	}
}
