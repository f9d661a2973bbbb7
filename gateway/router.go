package gateway

import (
	"campus-desk/auth"

	"github.com/gin-gonic/gin"
)

// NewRouter assembles the HTTP surface. Everything except registration and
// login sits behind the token middleware; the admin group additionally
// requires the admin role.
func NewRouter(issuer auth.TokenIssuer, rest *RestHandler, ws *WebsocketHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.POST("/auth/register", rest.Register)
	api.POST("/auth/login", rest.Login)

	authed := api.Group("", AuthMiddleware(issuer))
	authed.GET("/ws", ws.Handle)
	authed.GET("/tasks", rest.ListTasks)
	authed.POST("/tasks", rest.CreateTask)
	authed.PUT("/tasks/:id", rest.UpdateTask)
	authed.DELETE("/tasks/:id", rest.DeleteTask)
	authed.GET("/student-overview", rest.StudentOverview)
	authed.GET("/reports", rest.Reports)
	authed.GET("/notifications", rest.Notifications)
	authed.GET("/chats/:room", rest.History)
	authed.GET("/chats-search", rest.SearchChats)

	admin := authed.Group("/admin", AdminOnly())
	admin.GET("/tasks", rest.ListAllTasks)
	admin.GET("/overview", rest.AdminOverview)
	admin.GET("/reports", rest.AdminReports)
	admin.GET("/reports/students", rest.StudentReport)

	return router
}
