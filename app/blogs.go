package main

import (
	"net/http"

	"github.com/sushihentaime/blogsphere/internal/blogservice"
)

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	err := app.parseMultipart(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	cover, err := app.saveFormFile(r, "coverImage")
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer app.removeUploads(cover)

	blog, err := app.blogService.CreateBlog(r.Context(), blogservice.CreateBlogRequest{
		Title:          r.PostFormValue("title"),
		Content:        r.PostFormValue("content"),
		Tags:           blogservice.ParseTags(r.PostFormValue("tags")),
		CoverImagePath: cover,
		AuthorID:       app.getUserContext(r).ID,
	})
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusCreated, blog, "blog created")
}

func (app *application) userBlogsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "userId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.GetBlogsByAuthor(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, blogs, "user blogs fetched")
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.parseMultipart(w, r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	cover, err := app.saveFormFile(r, "coverImage")
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	defer app.removeUploads(cover)

	req := blogservice.UpdateBlogRequest{
		ID:             id,
		UserID:         app.getUserContext(r).ID,
		Title:          formValue(r, "title"),
		Content:        formValue(r, "content"),
		CoverImagePath: cover,
	}

	if tags := formValue(r, "tags"); tags != nil {
		req.Tags = blogservice.ParseTags(*tags)
	}

	blog, err := app.blogService.UpdateBlog(r.Context(), req)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, blog, "blog updated")
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.blogService.DeleteBlog(r.Context(), id, app.getUserContext(r).ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, nil, "blog deleted")
}

func (app *application) searchBlogsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit, err := app.readPageLimitParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.SearchBlogs(r.Context(), r.URL.Query().Get("query"), page, limit)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, blogs, "blogs fetched")
}

func (app *application) getAllBlogsHandler(w http.ResponseWriter, r *http.Request) {
	page, limit, err := app.readPageLimitParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.GetBlogs(r.Context(), page, limit)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, blogs, "blogs fetched")
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlogByID(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, blog, "blog fetched")
}

func (app *application) saveBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	saved, err := app.userService.ToggleSaveBlog(r.Context(), app.getUserContext(r).ID, id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	message := "blog unsaved"
	if saved {
		message = "blog saved"
	}

	app.writeResponse(w, r, http.StatusOK, envelope{"saved": saved}, message)
}

func (app *application) isBlogSavedHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	saved, err := app.userService.IsBlogSaved(r.Context(), app.getUserContext(r).ID, id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, envelope{"isSaved": saved}, "saved status fetched")
}
