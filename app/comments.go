package main

import "net/http"

type postCommentRequest struct {
	Content string `json:"content"`
}

func (app *application) postCommentHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var input postCommentRequest

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	comment, err := app.commentService.CreateComment(r.Context(), blogID, app.getUserContext(r).ID, input.Content)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusCreated, comment, "comment posted")
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "commentId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.commentService.DeleteComment(r.Context(), id, app.getUserContext(r).ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, nil, "comment deleted")
}

func (app *application) blogCommentsHandler(w http.ResponseWriter, r *http.Request) {
	blogID, err := app.readIDParam(r, "blogId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	page, limit, err := app.readPageLimitParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	comments, err := app.commentService.GetBlogComments(r.Context(), blogID, page, limit)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, comments, "comments fetched")
}
