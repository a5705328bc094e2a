package main

import "net/http"

func (app *application) toggleFollowHandler(w http.ResponseWriter, r *http.Request) {
	bloggerID, err := app.readIDParam(r, "bloggerId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	following, err := app.followService.ToggleFollow(r.Context(), app.getUserContext(r).ID, bloggerID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	message := "unfollowed"
	if following {
		message = "followed"
	}

	app.writeResponse(w, r, http.StatusOK, envelope{"Following": following}, message)
}

func (app *application) removeFollowerHandler(w http.ResponseWriter, r *http.Request) {
	followerID, err := app.readIDParam(r, "followerId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.followService.RemoveFollower(r.Context(), app.getUserContext(r).ID, followerID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, nil, "follower removed")
}

func (app *application) followersHandler(w http.ResponseWriter, r *http.Request) {
	bloggerID, err := app.readIDParam(r, "bloggerId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	page, limit, err := app.readPageLimitParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	users, err := app.followService.GetFollowers(r.Context(), bloggerID, page, limit)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, users, "followers fetched")
}

func (app *application) followingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "userId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	page, limit, err := app.readPageLimitParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	users, err := app.followService.GetFollowings(r.Context(), userID, page, limit)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, users, "followings fetched")
}

func (app *application) followersCountHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "userId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	followers, following, err := app.followService.Counts(r.Context(), userID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, envelope{"followers": followers, "following": following}, "follow counts fetched")
}

func (app *application) followingsCountHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := app.readIDParam(r, "userId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	_, following, err := app.followService.Counts(r.Context(), userID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, envelope{"following": following}, "following count fetched")
}

func (app *application) isFollowingHandler(w http.ResponseWriter, r *http.Request) {
	bloggerID, err := app.readIDParam(r, "bloggerId")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	status, err := app.followService.GetStatus(r.Context(), app.getUserContext(r).ID, bloggerID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, status, "follow status fetched")
}
