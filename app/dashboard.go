package main

import "net/http"

type dashboard struct {
	ProfilePic string `json:"profilePic"`
	BannerPic  string `json:"bannerPic"`
	Username   string `json:"username"`
	Fullname   string `json:"fullname"`
	Followers  int    `json:"followers"`
	Following  int    `json:"following"`
	TotalLikes int    `json:"totalLikes"`
	TotalBlogs int    `json:"totalBlogs"`
}

func (app *application) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	followers, following, err := app.followService.Counts(r.Context(), user.ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	likes, err := app.likeService.CountByUser(r.Context(), user.ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	blogs, err := app.blogService.CountByAuthor(r.Context(), user.ID)
	if err != nil {
		app.serviceErrorResponse(w, r, err)
		return
	}

	app.writeResponse(w, r, http.StatusOK, dashboard{
		ProfilePic: user.ProfilePic,
		BannerPic:  user.BannerPic,
		Username:   user.Username,
		Fullname:   user.Fullname,
		Followers:  followers,
		Following:  following,
		TotalLikes: likes,
		TotalBlogs: blogs,
	}, "dashboard fetched")
}
