package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogsphere/internal/common"
)

func TestRegisterVerifyLogin(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.routes(t))

	created, err := env.broker.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	require.NoError(t, err)

	profilePic := "https://res.cloudinary.com/demo/image/upload/v1/BlogApp/alice.png"
	env.media.On("Upload", mock.Anything).Return(profilePic, nil).Once()

	fields := map[string]string{
		"username": "alice",
		"fullname": "Alice Liddell",
		"email":    "alice@example.com",
		"password": "TestPassword123!",
		"bio":      "Down the rabbit hole",
	}

	status, _, body := ts.multipart(t, http.MethodPost, "/api/v1/user/register", fields, map[string]string{"profilePic": "png"}, "")
	require.Equal(t, http.StatusCreated, status, body)

	user := data(t, body)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, profilePic, user["profilePic"])
	assert.Equal(t, false, user["isVerified"])
	assert.NotContains(t, user, "password")
	assert.Equal(t, float64(http.StatusCreated), body["statusCode"])

	files, err := os.ReadDir(env.app.config.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, files, "spooled uploads must be removed")

	t.Run("duplicate email", func(t *testing.T) {
		dup := map[string]string{"username": "alice2", "fullname": "Alice", "email": "alice@example.com", "password": "TestPassword123!"}

		status, _, body := ts.multipart(t, http.MethodPost, "/api/v1/user/register", dup, nil, "")
		assert.Equal(t, http.StatusConflict, status)
		assert.Contains(t, body["errors"], "email")
	})

	t.Run("invalid fields", func(t *testing.T) {
		bad := map[string]string{"username": "bob", "email": "bob"}

		status, _, body := ts.multipart(t, http.MethodPost, "/api/v1/user/register", bad, nil, "")
		assert.Equal(t, http.StatusBadRequest, status)

		errs, ok := body["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "email")
		assert.Contains(t, errs, "fullname")
		assert.Contains(t, errs, "password")
		assert.IsType(t, "", body["message"])
	})

	login := loginUserRequest{EmailOrUsername: "alice", Password: "TestPassword123!"}

	status, _, _ = ts.request(t, http.MethodPost, "/api/v1/user/login", login, "")
	assert.Equal(t, http.StatusForbidden, status, "unverified users cannot log in")

	var msg struct {
		Link string `json:"link"`
	}

	select {
	case d := <-created:
		require.NoError(t, json.Unmarshal(d.Body, &msg))
	case <-time.After(5 * time.Second):
		t.Fatal("no verification message published")
	}

	link, err := url.Parse(msg.Link)
	require.NoError(t, err)

	tampered := link.Query()
	tampered.Set("email", "mallory@example.com")
	status, _, _ = ts.get(t, link.Path+"?"+tampered.Encode(), "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _, body = ts.get(t, link.RequestURI(), "")
	require.Equal(t, http.StatusOK, status, body)

	status, header, body := ts.request(t, http.MethodPost, "/api/v1/user/login", login, "")
	require.Equal(t, http.StatusOK, status, body)

	cookies := (&http.Response{Header: header}).Cookies()
	names := make([]string, 0, len(cookies))
	for _, c := range cookies {
		names = append(names, c.Name)
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	}
	assert.ElementsMatch(t, []string{"accessToken", "refreshToken"}, names)

	access, ok := data(t, body)["accessToken"].(string)
	require.True(t, ok)

	status, _, body = ts.get(t, "/api/v1/user/profile", access)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice@example.com", data(t, body)["email"])
	assert.Equal(t, true, data(t, body)["isVerified"])

	status, _, _ = ts.get(t, "/api/v1/user/resendVerificationLink/alice@example.com", "")
	assert.Equal(t, http.StatusBadRequest, status, "already verified")

	status, _, _ = ts.request(t, http.MethodPost, "/api/v1/user/login", loginUserRequest{EmailOrUsername: "alice@example.com", Password: "WrongPassword1!"}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	env.media.AssertExpectations(t)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.routes(t))

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/user/profile"},
		{http.MethodGet, "/api/v1/user/logout"},
		{http.MethodGet, "/api/v1/blog/blogById/1"},
		{http.MethodDelete, "/api/v1/blog/deleteBlog/1"},
		{http.MethodPost, "/api/v1/comment/postComment/1"},
		{http.MethodPatch, "/api/v1/like/toggleBlogLike/1"},
		{http.MethodPost, "/api/v1/followings/toggleFollow/1"},
		{http.MethodGet, "/api/v1/dashboard"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status, _, body := ts.request(t, tc.method, tc.path, nil, "")
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "unauthorized access", body["message"])

			status, _, _ = ts.request(t, tc.method, tc.path, nil, "not-a-token")
			assert.Equal(t, http.StatusUnauthorized, status)
		})
	}

	status, _, body := ts.get(t, "/api/v1/healthCheck", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "available", data(t, body)["status"])

	status, _, _ = ts.get(t, "/api/v1/nowhere", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = ts.request(t, http.MethodPut, "/api/v1/blog/allBlogs", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
}

func TestBlogHandlers(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.routes(t))

	authorID := common.InsertTestUser(t, env.db, "author")
	otherID := common.InsertTestUser(t, env.db, "other")
	authorToken := env.accessToken(t, authorID, "author")
	otherToken := env.accessToken(t, otherID, "other")

	cover := "https://res.cloudinary.com/demo/image/upload/v1/BlogApp/cover.png"
	env.media.On("Upload", mock.Anything).Return(cover, nil)
	env.media.On("Delete", cover).Return()

	fields := map[string]string{"title": "Go in practice", "content": "# Hello\n<script>alert(1)</script>", "tags": "Go, backend, go"}

	status, _, body := ts.multipart(t, http.MethodPost, "/api/v1/blog/createBlog", fields, nil, authorToken)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "coverImage")

	status, _, body = ts.multipart(t, http.MethodPost, "/api/v1/blog/createBlog", fields, map[string]string{"coverImage": "png"}, authorToken)
	require.Equal(t, http.StatusCreated, status, body)

	blog := data(t, body)
	blogID := int64(blog["id"].(float64))
	assert.Equal(t, []any{"go", "backend"}, blog["tags"])
	assert.NotContains(t, blog["content"], "<script>")
	assert.Equal(t, "author", blog["author"].(map[string]any)["username"])

	blogPath := func(action string) string {
		return fmt.Sprintf("/api/v1/blog/%s/%d", action, blogID)
	}

	status, _, _ = ts.multipart(t, http.MethodPatch, blogPath("updateBlog"), map[string]string{"title": "Hijacked"}, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, body = ts.multipart(t, http.MethodPatch, blogPath("updateBlog"), map[string]string{"title": "Go in production"}, nil, authorToken)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Go in production", data(t, body)["title"])
	assert.Equal(t, []any{"go", "backend"}, data(t, body)["tags"])

	status, _, body = ts.get(t, blogPath("blogById"), otherToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Go in production", data(t, body)["title"])

	status, _, body = ts.get(t, fmt.Sprintf("/api/v1/blog/userBlogs/%d", authorID), otherToken)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(t, body["data"]), 1)

	status, _, body = ts.get(t, "/api/v1/blog/searchBlogs?query=backend", otherToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), data(t, body)["totalDocs"])

	status, _, body = ts.request(t, http.MethodPatch, blogPath("saveBlog"), nil, otherToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(t, body)["saved"])

	status, _, body = ts.get(t, blogPath("isBlogSaved"), otherToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(t, body)["isSaved"])

	status, _, body = ts.get(t, "/api/v1/user/savedBlogs", otherToken)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, list(t, body["data"]), 1)

	status, _, _ = ts.request(t, http.MethodDelete, blogPath("deleteBlog"), nil, otherToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = ts.request(t, http.MethodDelete, blogPath("deleteBlog"), nil, authorToken)
	require.Equal(t, http.StatusOK, status)

	status, _, _ = ts.get(t, blogPath("blogById"), authorToken)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, body = ts.get(t, "/api/v1/user/savedBlogs", otherToken)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list(t, body["data"]), "deleted blogs leave saved lists")

	env.media.AssertCalled(t, "Delete", cover)
}

func TestAllBlogsPagination(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.routes(t))

	authorID := common.InsertTestUser(t, env.db, "author")
	for i := 1; i <= 12; i++ {
		common.InsertTestBlog(t, env.db, authorID, fmt.Sprintf("Blog number %02d", i))
	}

	status, _, body := ts.get(t, "/api/v1/blog/allBlogs?page=2&limit=5", "")
	require.Equal(t, http.StatusOK, status)

	page := data(t, body)
	docs := list(t, page["docs"])
	require.Len(t, docs, 5)
	assert.Equal(t, "Blog number 07", docs[0].(map[string]any)["title"])
	assert.Equal(t, float64(12), page["totalDocs"])
	assert.Equal(t, float64(3), page["totalPages"])
	assert.Equal(t, true, page["hasPrevPage"])
	assert.Equal(t, true, page["hasNextPage"])
	assert.Equal(t, float64(3), page["nextPage"])

	status, _, body = ts.get(t, "/api/v1/blog/allBlogs?page=9&limit=5", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list(t, data(t, body)["docs"]))
	assert.Equal(t, float64(12), data(t, body)["totalDocs"])

	status, _, body = ts.get(t, "/api/v1/blog/allBlogs?page=100000000000000000&limit=100", "")
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, list(t, data(t, body)["docs"]))
	assert.Equal(t, float64(12), data(t, body)["totalDocs"])

	status, _, body = ts.get(t, "/api/v1/blog/allBlogs", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(10), data(t, body)["limit"])

	status, _, _ = ts.get(t, "/api/v1/blog/allBlogs?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCommentHandlers(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.routes(t))

	authorID := common.InsertTestUser(t, env.db, "author")
	commenterID := common.InsertTestUser(t, env.db, "commenter")
	strangerID := common.InsertTestUser(t, env.db, "stranger")
	blogID := common.InsertTestBlog(t, env.db, authorID, "Commented blog")

	authorToken := env.accessToken(t, authorID, "author")
	commenterToken := env.accessToken(t, commenterID, "commenter")
	strangerToken := env.accessToken(t, strangerID, "stranger")

	post := func(content string) (int, envelope) {
		status, _, body := ts.request(t, http.MethodPost, fmt.Sprintf("/api/v1/comment/postComment/%d", blogID), postCommentRequest{Content: content}, commenterToken)
		return status, body
	}

	status, _ := post("   ")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := post("first!")
	require.Equal(t, http.StatusCreated, status, body)
	first := int64(data(t, body)["id"].(float64))
	assert.Equal(t, "commenter", data(t, body)["user"].(map[string]any)["username"])

	status, body = post("second")
	require.Equal(t, http.StatusCreated, status)
	second := int64(data(t, body)["id"].(float64))

	status, _, body = ts.get(t, fmt.Sprintf("/api/v1/comment/blogComments/%d", blogID), strangerToken)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), data(t, body)["totalDocs"])
	assert.Equal(t, "second", list(t, data(t, body)["docs"])[0].(map[string]any)["content"])

	deletePath := func(id int64) string {
		return fmt.Sprintf("/api/v1/comment/deleteComment/%d", id)
	}

	status, _, _ = ts.request(t, http.MethodDelete, deletePath(first), nil, strangerToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, _, _ = ts.request(t, http.MethodDelete, deletePath(first), nil, authorToken)
	assert.Equal(t, http.StatusOK, status, "the blog author may delete any comment")

	status, _, _ = ts.request(t, http.MethodDelete, deletePath(second), nil, commenterToken)
	assert.Equal(t, http.StatusOK, status, "the comment author may delete their comment")

	status, _, _ = ts.request(t, http.MethodDelete, deletePath(second), nil, commenterToken)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSocialHandlers(t *testing.T) {
	env := newTestApplication(t)
	ts := newTestServer(t, env.routes(t))

	aliceID := common.InsertTestUser(t, env.db, "alice")
	bobID := common.InsertTestUser(t, env.db, "bob")
	blogID := common.InsertTestBlog(t, env.db, bobID, "Bob's blog")

	alice := env.accessToken(t, aliceID, "alice")
	bob := env.accessToken(t, bobID, "bob")

	likePath := fmt.Sprintf("/api/v1/like/toggleBlogLike/%d", blogID)

	status, _, body := ts.request(t, http.MethodPatch, likePath, nil, alice)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, data(t, body)["like"])

	_, _, body = ts.get(t, fmt.Sprintf("/api/v1/like/blogLikesCount/%d", blogID), bob)
	assert.Equal(t, float64(1), data(t, body)["likes"])

	_, _, body = ts.get(t, fmt.Sprintf("/api/v1/like/isBlogLiked/%d", blogID), alice)
	assert.Equal(t, true, data(t, body)["isLiked"])

	_, _, body = ts.get(t, fmt.Sprintf("/api/v1/like/blogLikes/%d", blogID), bob)
	likers := list(t, body["data"])
	require.Len(t, likers, 1)
	assert.Equal(t, "alice", likers[0].(map[string]any)["username"])
	assert.NotContains(t, likers[0], "email")

	_, _, body = ts.get(t, "/api/v1/like/usersLikedBlogs", alice)
	assert.Len(t, list(t, body["data"]), 1)

	status, _, _ = ts.request(t, http.MethodPatch, "/api/v1/like/toggleBlogLike/999999", nil, alice)
	assert.Equal(t, http.StatusNotFound, status)

	followPath := fmt.Sprintf("/api/v1/followings/toggleFollow/%d", bobID)

	for i, method := range []string{http.MethodPost, http.MethodPatch, http.MethodPost} {
		status, _, body = ts.request(t, method, followPath, nil, alice)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, i%2 == 0, data(t, body)["Following"])
	}

	status, _, _ = ts.request(t, http.MethodPost, fmt.Sprintf("/api/v1/followings/toggleFollow/%d", aliceID), nil, alice)
	assert.Equal(t, http.StatusBadRequest, status)

	_, _, body = ts.get(t, fmt.Sprintf("/api/v1/followings/isFollowing/%d", bobID), alice)
	assert.Equal(t, true, data(t, body)["isFollowing"])
	assert.Equal(t, false, data(t, body)["isFollowedByBlogger"])

	_, _, body = ts.get(t, fmt.Sprintf("/api/v1/followings/followersCount/%d", bobID), alice)
	assert.Equal(t, float64(1), data(t, body)["followers"])
	assert.Equal(t, float64(0), data(t, body)["following"])

	_, _, body = ts.get(t, fmt.Sprintf("/api/v1/followings/followingsCount/%d", aliceID), bob)
	assert.Equal(t, float64(1), data(t, body)["following"])

	_, _, body = ts.get(t, fmt.Sprintf("/api/v1/followings/userFollowers/%d", bobID), alice)
	assert.Len(t, list(t, body["data"]), 1)

	_, _, body = ts.get(t, fmt.Sprintf("/api/v1/followings/userFollowings/%d", aliceID), alice)
	assert.Len(t, list(t, body["data"]), 1)

	status, _, body = ts.get(t, fmt.Sprintf("/api/v1/user/userProfile/%d", bobID), alice)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "bob", data(t, body)["username"])
	assert.Equal(t, float64(1), data(t, body)["followers"])
	assert.NotContains(t, data(t, body), "email")

	_, _, body = ts.get(t, "/api/v1/dashboard", bob)
	dash := data(t, body)
	assert.Equal(t, "bob", dash["username"])
	assert.Equal(t, float64(1), dash["followers"])
	assert.Equal(t, float64(1), dash["totalBlogs"])
	assert.Equal(t, float64(0), dash["totalLikes"])

	_, _, body = ts.get(t, "/api/v1/dashboard", alice)
	assert.Equal(t, float64(1), data(t, body)["totalLikes"])
	assert.Equal(t, float64(1), data(t, body)["following"])

	status, _, _ = ts.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/followings/removeFollower/%d", aliceID), nil, bob)
	require.Equal(t, http.StatusOK, status)

	_, _, body = ts.get(t, fmt.Sprintf("/api/v1/followings/followersCount/%d", bobID), bob)
	assert.Equal(t, float64(0), data(t, body)["followers"])

	_, _, body = ts.get(t, "/api/v1/user/bloggers", alice)
	bloggers := list(t, data(t, body)["docs"])
	require.Len(t, bloggers, 1)
	assert.Equal(t, "bob", bloggers[0].(map[string]any)["username"])
}
