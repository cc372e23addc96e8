package router

import (
	"github.com/labstack/echo/v4"

	"github.com/atempo/atempo-server/internal/handler"
	"github.com/atempo/atempo-server/internal/middleware"
)

// RegisterBoard registers the fan message board.  Identity is the device
// uid header; OptionalJWT lets an admin's token through so moderation
// deletes work on the same routes.
func RegisterBoard(e *echo.Echo, b *handler.BoardHandler, jwtSecret string) {
	g := e.Group("/v1/board")
	g.Use(middleware.OptionalJWT(jwtSecret))

	g.GET("/posts", b.ListPosts)
	g.POST("/posts", b.CreatePost)
	g.PUT("/posts/:id", b.UpdatePost)
	g.DELETE("/posts/:id", b.DeletePost)

	g.GET("/posts/:id/comments", b.ListComments)
	g.POST("/posts/:id/comments", b.CreateComment)
	g.DELETE("/comments/:commentId", b.DeleteComment)
}
