package main

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// routes builds the handler chain. Background work started here stops when ctx
// is cancelled.
func (app *application) routes(ctx context.Context) http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	auth := app.requireAuthenticatedUser

	router.HandlerFunc(http.MethodGet, "/api/v1/healthCheck", app.healthCheckHandler)

	// users
	router.HandlerFunc(http.MethodPost, "/api/v1/user/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodGet, "/api/v1/user/register/verify-token", app.verifyEmailHandler)
	router.HandlerFunc(http.MethodPost, "/api/v1/user/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodGet, "/api/v1/user/resendVerificationLink/:email", app.resendVerificationHandler)
	router.HandlerFunc(http.MethodGet, "/api/v1/user/logout", auth(app.logoutUserHandler))
	router.HandlerFunc(http.MethodPatch, "/api/v1/user/changePassword", auth(app.changePasswordHandler))
	router.HandlerFunc(http.MethodPatch, "/api/v1/user/sendOTP", app.sendOTPHandler)
	router.HandlerFunc(http.MethodPatch, "/api/v1/user/verifyOTP", app.verifyOTPHandler)
	router.HandlerFunc(http.MethodPatch, "/api/v1/user/resetPassword", app.resetPasswordHandler)
	router.HandlerFunc(http.MethodPatch, "/api/v1/user/changeProfilePic", auth(app.changeProfilePicHandler))
	router.HandlerFunc(http.MethodPatch, "/api/v1/user/changeBannerPic", auth(app.changeBannerPicHandler))
	router.HandlerFunc(http.MethodPatch, "/api/v1/user/updateProfile", auth(app.updateProfileHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/user/bloggers", auth(app.getBloggersHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/user/userProfile/:userId", auth(app.userProfileHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/user/profile", auth(app.currentUserHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/user/savedBlogs", auth(app.savedBlogsHandler))

	// blogs
	router.HandlerFunc(http.MethodPost, "/api/v1/blog/createBlog", auth(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/blog/userBlogs/:userId", auth(app.userBlogsHandler))
	router.HandlerFunc(http.MethodPatch, "/api/v1/blog/updateBlog/:blogId", auth(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/api/v1/blog/deleteBlog/:blogId", auth(app.deleteBlogHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/blog/searchBlogs", auth(app.searchBlogsHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/blog/allBlogs", app.getAllBlogsHandler)
	router.HandlerFunc(http.MethodGet, "/api/v1/blog/blogById/:blogId", auth(app.getBlogHandler))
	router.HandlerFunc(http.MethodPatch, "/api/v1/blog/saveBlog/:blogId", auth(app.saveBlogHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/blog/isBlogSaved/:blogId", auth(app.isBlogSavedHandler))

	// comments
	router.HandlerFunc(http.MethodPost, "/api/v1/comment/postComment/:blogId", auth(app.postCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/api/v1/comment/deleteComment/:commentId", auth(app.deleteCommentHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/comment/blogComments/:blogId", auth(app.blogCommentsHandler))

	// likes
	router.HandlerFunc(http.MethodPatch, "/api/v1/like/toggleBlogLike/:blogId", auth(app.toggleBlogLikeHandler))
	router.HandlerFunc(http.MethodPatch, "/api/v1/like/toggleCommentLike/:commentId", auth(app.toggleCommentLikeHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/like/blogLikes/:blogId", auth(app.blogLikersHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/like/blogLikesCount/:blogId", auth(app.blogLikesCountHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/like/commentLikesCount/:commentId", auth(app.commentLikesCountHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/like/usersLikedBlogs", auth(app.likedBlogsHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/like/isCommentLiked/:commentId", auth(app.isCommentLikedHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/like/isBlogLiked/:blogId", auth(app.isBlogLikedHandler))

	// followings
	router.HandlerFunc(http.MethodPost, "/api/v1/followings/toggleFollow/:bloggerId", auth(app.toggleFollowHandler))
	router.HandlerFunc(http.MethodPatch, "/api/v1/followings/toggleFollow/:bloggerId", auth(app.toggleFollowHandler))
	router.HandlerFunc(http.MethodDelete, "/api/v1/followings/removeFollower/:followerId", auth(app.removeFollowerHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/followings/userFollowers/:bloggerId", auth(app.followersHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/followings/userFollowings/:userId", auth(app.followingsHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/followings/followersCount/:userId", auth(app.followersCountHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/followings/followingsCount/:userId", auth(app.followingsCountHandler))
	router.HandlerFunc(http.MethodGet, "/api/v1/followings/isFollowing/:bloggerId", auth(app.isFollowingHandler))

	router.HandlerFunc(http.MethodGet, "/api/v1/dashboard", auth(app.dashboardHandler))

	router.Handler(http.MethodGet, "/metrics", app.metrics.handler())

	return app.instrument(router, app.recoverPanic(app.logRequest(app.enableCORS(app.rateLimit(ctx, app.authenticate(router))))))
}
