package task

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"teamboard/controller/httperr"
	"teamboard/dto"
	"teamboard/middleware"
	"teamboard/services"
)

func TaskController(router *gin.RouterGroup, tasks *services.TaskService, auth gin.HandlerFunc) {
	group := router.Group("/tasks", auth)

	group.POST("", func(c *gin.Context) {
		CreateTask(c, tasks)
	})
	group.GET("", func(c *gin.Context) {
		ListTasks(c, tasks)
	})
	group.GET("/status/:status", func(c *gin.Context) {
		ListTasksByStatus(c, tasks)
	})
	group.GET("/assigned", func(c *gin.Context) {
		ListAssignedTasks(c, tasks)
	})
	group.GET("/:id", func(c *gin.Context) {
		GetTask(c, tasks)
	})
	group.PUT("/:id", func(c *gin.Context) {
		UpdateTask(c, tasks)
	})
	group.DELETE("/:id", func(c *gin.Context) {
		DeleteTask(c, tasks)
	})
}

func CreateTask(c *gin.Context, tasks *services.TaskService) {
	identity, _ := middleware.CurrentUser(c)

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	task, err := tasks.Create(c.Request.Context(), identity, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func ListTasks(c *gin.Context, tasks *services.TaskService) {
	list, err := tasks.List(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func ListTasksByStatus(c *gin.Context, tasks *services.TaskService) {
	list, err := tasks.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func ListAssignedTasks(c *gin.Context, tasks *services.TaskService) {
	identity, _ := middleware.CurrentUser(c)

	list, err := tasks.ListAssignedTo(c.Request.Context(), identity.UserID)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func GetTask(c *gin.Context, tasks *services.TaskService) {
	task, err := tasks.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func UpdateTask(c *gin.Context, tasks *services.TaskService) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, err)
		return
	}

	task, err := tasks.Update(c.Request.Context(), c.Param("id"), services.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	})
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func DeleteTask(c *gin.Context, tasks *services.TaskService) {
	identity, _ := middleware.CurrentUser(c)

	if err := tasks.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task removed"})
}
