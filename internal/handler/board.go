package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/config"
	"github.com/atempo/atempo-server/internal/model"
	"github.com/atempo/atempo-server/internal/repository"
	"github.com/atempo/atempo-server/internal/utils"
)

// deviceUIDHeader carries the audience device identity on board requests.
const deviceUIDHeader = "X-Device-Uid"

// BoardHandler implements the fan message board.  Audience members are
// identified by the device uid header, performers by their Bearer token;
// admin tokens may additionally remove any post.
type BoardHandler struct {
	Cfg   config.Config
	Posts PostStore
}

func NewBoardHandler(cfg config.Config, p PostStore) *BoardHandler {
	return &BoardHandler{Cfg: cfg, Posts: p}
}

// viewerUID resolves the caller's board identity.  A performer's access
// token wins; the device uid header is honored only in its minted
// device_ shape, so a forged header cannot claim a performer's numeric id.
func viewerUID(c echo.Context) string {
	if id, ok := c.Get("user_id").(uint64); ok {
		return strconv.FormatUint(id, 10)
	}
	uid := strings.TrimSpace(c.Request().Header.Get(deviceUIDHeader))
	if strings.HasPrefix(uid, utils.DeviceUIDPrefix) {
		return uid
	}
	return ""
}

// isAdminViewer reports whether the request carries an admin's access
// token.  OptionalJWT fills the email claim when a valid token is present.
func (h *BoardHandler) isAdminViewer(c echo.Context) bool {
	email, ok := c.Get("email").(string)
	return ok && h.Cfg.IsAdminEmail(email)
}

// visibleToViewer applies the board visibility rule: public posts are for
// everyone, private posts only for the author and the uids in visibleTo.
func visibleToViewer(p *model.Post, uid string) bool {
	if p.IsPublic {
		return true
	}
	if uid == "" {
		return false
	}
	if p.FromUID == uid {
		return true
	}
	for _, v := range p.VisibleTo {
		if v == uid {
			return true
		}
	}
	return false
}

// ListPosts returns the board as the caller is allowed to see it.
// Filtering happens here on the server; the client never receives a private
// post it cannot read.
func (h *BoardHandler) ListPosts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	posts, err := h.Posts.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	uid := viewerUID(c)
	out := []model.Post{}
	for i := range posts {
		if visibleToViewer(&posts[i], uid) {
			out = append(out, posts[i])
		}
	}
	return c.JSON(http.StatusOK, out)
}

type createPostReq struct {
	Content  string   `json:"content" validate:"required"`
	From     string   `json:"from" validate:"required"`
	IsPublic bool     `json:"isPublic"`
	ToUIDs   []string `json:"toUids"`
	ToNames  []string `json:"toNames"`
	Color    string   `json:"color"`
}

// CreatePost adds a sticky note.  A private post must name at least one
// recipient; its visibleTo list is built server-side as author + recipients
// so the author can never lock themselves out of their own post.
func (h *BoardHandler) CreatePost(c echo.Context) error {
	uid := viewerUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "device uid required"})
	}
	var req createPostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	visibleTo := []string{}
	if !req.IsPublic {
		recipients := []string{}
		for _, r := range req.ToUIDs {
			if r = strings.TrimSpace(r); r != "" && r != uid {
				recipients = append(recipients, r)
			}
		}
		if len(recipients) == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "private post needs at least one recipient"})
		}
		visibleTo = append([]string{uid}, recipients...)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p := &model.Post{
		Content:   strings.TrimSpace(req.Content),
		From:      strings.TrimSpace(req.From),
		FromUID:   uid,
		IsPublic:  req.IsPublic,
		VisibleTo: visibleTo,
		ToNames:   req.ToNames,
		Color:     req.Color,
	}
	if err := h.Posts.Create(ctx, p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, p)
}

type updatePostReq struct {
	Content string `json:"content" validate:"required"`
	Color   string `json:"color"`
}

// UpdatePost edits a post's text or color.  Author only; the audience and
// visibility of a post are fixed at creation.
func (h *BoardHandler) UpdatePost(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updatePostReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if p.FromUID != viewerUID(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the author"})
	}

	if err := h.Posts.Update(ctx, id, strings.TrimSpace(req.Content), req.Color); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// DeletePost removes a post.  The author may always delete their own;
// admins may delete anything, which is how moderation works.
func (h *BoardHandler) DeletePost(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.GetByID(ctx, id)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if p.FromUID != viewerUID(c) && !h.isAdminViewer(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the author"})
	}

	if err := h.Posts.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type createCommentReq struct {
	Content string `json:"content" validate:"required"`
	Author  string `json:"author" validate:"required"`
}

// CreateComment replies under a post the caller can see.
func (h *BoardHandler) CreateComment(c echo.Context) error {
	postID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	uid := viewerUID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "device uid required"})
	}
	var req createCommentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.GetByID(ctx, postID)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if !visibleToViewer(p, uid) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "post not visible"})
	}

	cm := &model.Comment{
		PostID:    postID,
		Content:   strings.TrimSpace(req.Content),
		Author:    strings.TrimSpace(req.Author),
		AuthorUID: uid,
	}
	if err := h.Posts.CreateComment(ctx, cm); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, cm)
}

// ListComments returns a post's comments, provided the caller can see the
// post itself.
func (h *BoardHandler) ListComments(c echo.Context) error {
	postID, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Posts.GetByID(ctx, postID)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if !visibleToViewer(p, viewerUID(c)) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "post not visible"})
	}

	comments, err := h.Posts.ListComments(ctx, postID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment removes a comment, author or admin only.
func (h *BoardHandler) DeleteComment(c echo.Context) error {
	id, err := parseID(c.Param("commentId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cm, err := h.Posts.GetComment(ctx, id)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "comment not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}
	if cm.AuthorUID != viewerUID(c) && !h.isAdminViewer(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not the author"})
	}

	if err := h.Posts.DeleteComment(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
