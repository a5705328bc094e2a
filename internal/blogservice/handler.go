package blogservice

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/sushihentaime/blogsphere/internal/common"
)

func NewBlogService(db *sql.DB, c *common.Cache, media Media, logger *slog.Logger) *BlogService {
	return &BlogService{
		m:      newBlogModel(db),
		c:      c,
		media:  media,
		logger: logger,
	}
}

// CreateBlog uploads the cover image and stores a new blog for the author.
func (s *BlogService) CreateBlog(ctx context.Context, req CreateBlogRequest) (*Blog, error) {
	tags := normalizeTags(req.Tags)

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateTags(v, tags)
	common.ValidateID(v, req.AuthorID, "authorId")
	v.Required(map[string]string{"coverImage": req.CoverImagePath})
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	cover, err := s.media.Upload(ctx, req.CoverImagePath)
	if err != nil {
		return nil, err
	}

	b := Blog{
		Title:      req.Title,
		Content:    sanitizeMarkdown(req.Content),
		Tags:       tags,
		CoverImage: cover,
		AuthorID:   req.AuthorID,
	}

	if err := s.m.insert(ctx, &b); err != nil {
		s.media.Delete(ctx, cover)
		return nil, err
	}

	return s.GetBlogByID(ctx, b.ID)
}

// GetBlogByID returns a blog with its author.
func (s *BlogService) GetBlogByID(ctx context.Context, id int64) (*Blog, error) {
	v := common.NewValidator()
	common.ValidateID(v, id, "blogId")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
		b := cached.(Blog).clone()
		return &b, nil
	}

	b, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.c.Set(common.CacheKeyBlog(id), b.clone())

	return b, nil
}

// UpdateBlog edits a blog owned by req.UserID. A new cover replaces the old one,
// which is deleted only after the update is stored.
func (s *BlogService) UpdateBlog(ctx context.Context, req UpdateBlogRequest) (*Blog, error) {
	v := common.NewValidator()
	common.ValidateID(v, req.ID, "blogId")
	if req.Title == nil && req.Content == nil && req.Tags == nil && req.CoverImagePath == "" {
		v.AddError("blog", "at least one of title, content, tags or coverImage must be provided")
	}
	if req.Title != nil {
		validateTitle(v, *req.Title)
	}
	if req.Content != nil {
		validateContent(v, *req.Content)
	}
	if req.Tags != nil {
		req.Tags = normalizeTags(req.Tags)
		validateTags(v, req.Tags)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	b, err := s.m.getByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if b.AuthorID != req.UserID {
		return nil, common.ErrNotOwner
	}

	if req.Title != nil {
		b.Title = *req.Title
	}

	if req.Content != nil {
		b.Content = sanitizeMarkdown(*req.Content)
	}

	if req.Tags != nil {
		b.Tags = req.Tags
	}

	previous := ""
	if req.CoverImagePath != "" {
		cover, err := s.media.Upload(ctx, req.CoverImagePath)
		if err != nil {
			return nil, err
		}
		previous, b.CoverImage = b.CoverImage, cover
	}

	if err := s.m.update(ctx, b); err != nil {
		if previous != "" {
			s.media.Delete(ctx, b.CoverImage)
		}
		return nil, err
	}

	s.c.Delete(common.CacheKeyBlog(b.ID))

	if previous != "" {
		s.media.Delete(ctx, previous)
	}

	return b, nil
}

// DeleteBlog deletes a blog owned by userID. Comments and likes go with it,
// and the blog is dropped from every saved-blog list.
func (s *BlogService) DeleteBlog(ctx context.Context, blogID, userID int64) error {
	v := common.NewValidator()
	common.ValidateID(v, blogID, "blogId")
	if !v.Valid() {
		return v.ValidationError()
	}

	b, err := s.m.getByID(ctx, blogID)
	if err != nil {
		return err
	}

	if b.AuthorID != userID {
		return common.ErrNotOwner
	}

	users, err := s.m.delete(ctx, blogID)
	if err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyBlog(blogID))
	for _, id := range users {
		s.c.Delete(common.CacheKeyUser(id))
	}

	s.media.Delete(ctx, b.CoverImage)

	return nil
}

// GetBlogsByAuthor returns every blog by a user, newest first.
func (s *BlogService) GetBlogsByAuthor(ctx context.Context, authorID int64) ([]Blog, error) {
	v := common.NewValidator()
	common.ValidateID(v, authorID, "userId")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.listByAuthor(ctx, authorID)
}

// GetBlogs returns a page of all blogs, newest first.
func (s *BlogService) GetBlogs(ctx context.Context, page, limit int) (common.Page[Blog], error) {
	p := common.NewPagination(page, limit, DefaultBlogsLimit)

	blogs, total, err := s.m.listAll(ctx, p)
	if err != nil {
		return common.Page[Blog]{}, err
	}

	return common.NewPage(blogs, total, p), nil
}

// SearchBlogs returns a page of blogs whose title or tags match any word of query.
func (s *BlogService) SearchBlogs(ctx context.Context, query string, page, limit int) (common.Page[Blog], error) {
	v := common.NewValidator()
	validateQuery(v, query)
	if !v.Valid() {
		return common.Page[Blog]{}, v.ValidationError()
	}

	p := common.NewPagination(page, limit, DefaultBlogsLimit)

	blogs, total, err := s.m.search(ctx, query, p)
	if err != nil {
		return common.Page[Blog]{}, err
	}

	return common.NewPage(blogs, total, p), nil
}

// GetBlogsByIDs returns the blogs in the order given, skipping ids that no longer exist.
func (s *BlogService) GetBlogsByIDs(ctx context.Context, ids []int64) ([]Blog, error) {
	return s.m.listByIDs(ctx, ids)
}

func (s *BlogService) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	return s.m.countByAuthor(ctx, authorID)
}
