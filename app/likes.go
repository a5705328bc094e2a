package main

import (
	"context"
	"net/http"
)

func (app *application) toggleBlogLikeHandler(w http.ResponseWriter, r *http.Request) {
	app.toggleLike(w, r, "blogId", app.likeService.ToggleBlogLike)
}

func (app *application) toggleCommentLikeHandler(w http.ResponseWriter, r *http.Request) {
	app.toggleLike(w, r, "commentId", app.likeService.ToggleCommentLike)
}

func (app *application) toggleLike(w http.ResponseWriter, r *http.Request, param string, toggle func(ctx context.Context, userID, id int64) (bool, error)) {
	id, err := app.readIDParam(r, param)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	liked, err := toggle(r.Context(), app.getUserContext(r).ID, id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	message := "like removed"
	if liked {
		message = "like added"
	}

	app.writeResponse(w, r, http.StatusOK, envelope{"like": liked}, message)
}

func (app *application) isBlogLikedHandler(w http.ResponseWriter, r *http.Request) {
	app.isLiked(w, r, "blogId", app.likeService.IsBlogLiked)
}

func (app *application) isCommentLikedHandler(w http.ResponseWriter, r *http.Request) {
	app.isLiked(w, r, "commentId", app.likeService.IsCommentLiked)
}

func (app *application) isLiked(w http.ResponseWriter, r *http.Request, param string, check func(ctx context.Context, userID, id int64) (bool, error)) {
	id, err := app.readIDParam(r, param)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	liked, err := check(r.Context(), app.getUserContext(r).ID, id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, envelope{"isLiked": liked}, "like status fetched")
}

func (app *application) blogLikesCountHandler(w http.ResponseWriter, r *http.Request) {
	app.likesCount(w, r, "blogId", app.likeService.CountBlogLikes)
}

func (app *application) commentLikesCountHandler(w http.ResponseWriter, r *http.Request) {
	app.likesCount(w, r, "commentId", app.likeService.CountCommentLikes)
}

func (app *application) likesCount(w http.ResponseWriter, r *http.Request, param string, count func(ctx context.Context, id int64) (int, error)) {
	id, err := app.readIDParam(r, param)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	n, err := count(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, envelope{"likes": n}, "likes counted")
}

func (app *application) blogLikersHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	users, err := app.likeService.GetBlogLikers(r.Context(), id)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, users, "blog likes fetched")
}

func (app *application) likedBlogsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := app.likeService.LikedBlogIDs(r.Context(), app.getUserContext(r).ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.GetBlogsByIDs(r.Context(), ids)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, blogs, "liked blogs fetched")
}
