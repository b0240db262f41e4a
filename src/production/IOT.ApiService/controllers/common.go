package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/middleware"
	events "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Events"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// resource carries what every asset controller shares
type resource struct {
	name     string // topic segment and log component, e.g. "measuring_points"
	entity   string // human name used in messages, e.g. "Measuring point"
	logger   *logger.Logger
	notifier events.Notifier
	auth     *middleware.AuthMiddleware
}

func newResource(name, entity string, log *logger.Logger, notifier events.Notifier, auth *middleware.AuthMiddleware) resource {
	if notifier == nil {
		notifier = events.NoopNotifier{}
	}
	return resource{
		name:     name,
		entity:   entity,
		logger:   log.WithComponent(name),
		notifier: notifier,
		auth:     auth,
	}
}

// read and write return the middleware chains for each kind of route
func (r resource) read(h gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{r.auth.Authenticate(), h}
}

func (r resource) write(h gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{r.auth.Authenticate(), r.auth.RequireAdmin(), h}
}

// parseID reads a hex ObjectID path parameter. On failure it writes a 400.
func parseID(ctx *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param(param))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, api_models.ErrorResponse{Error: "invalid " + param})
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseBodyID converts an already validated body id, or nil when absent
func parseBodyID(hex *string) (*primitive.ObjectID, error) {
	if hex == nil {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(*hex)
	if err != nil {
		return nil, interfaces.ErrInvalidID
	}
	return &id, nil
}

func cascadeParam(ctx *gin.Context) (bool, bool) {
	raw := ctx.Query("cascade")
	if raw == "" {
		return false, true
	}
	cascade, err := strconv.ParseBool(raw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, api_models.ErrorResponse{Error: "invalid cascade"})
		return false, false
	}
	return cascade, true
}

// fail maps a repository error to a response. action is the generic
// message used for unexpected failures, e.g. "Error getting sites".
func (r resource) fail(ctx *gin.Context, err error, action string) {
	var dupErr *interfaces.DuplicateKeyError
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		ctx.JSON(http.StatusNotFound, api_models.ErrorResponse{Error: r.entity + " not found"})
	case errors.As(err, &dupErr):
		field := dupErr.Field
		if field == "" {
			field = "value"
		}
		ctx.JSON(http.StatusBadRequest, api_models.ErrorResponse{Error: fmt.Sprintf("%s with this %s already exists", r.entity, field)})
	case errors.Is(err, interfaces.ErrInvalidID):
		ctx.JSON(http.StatusBadRequest, api_models.ErrorResponse{Error: "invalid id"})
	default:
		_ = ctx.Error(err)
		r.logger.WithRequestID(middleware.GetRequestID(ctx)).ErrorWithError(err, action)
		ctx.JSON(http.StatusInternalServerError, api_models.ErrorResponse{Error: action})
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}

// parentMissing answers 404 for a create or re-parent whose parent does not exist
func parentMissing(ctx *gin.Context, parentEntity string) {
	ctx.JSON(http.StatusNotFound, api_models.ErrorResponse{Error: parentEntity + " not found"})
}

func (r resource) notify(ctx *gin.Context, action events.Action, id, parentID primitive.ObjectID) {
	change := events.Change{Resource: r.name, Action: action, ID: id.Hex()}
	if !parentID.IsZero() {
		change.ParentID = parentID.Hex()
	}
	r.notifier.Notify(ctx.Request.Context(), change)
}

func (r resource) deleted(ctx *gin.Context, id primitive.ObjectID, n int64, cascade bool) {
	r.notifier.Notify(ctx.Request.Context(), events.Change{
		Resource: r.name,
		Action:   events.ActionDeleted,
		ID:       id.Hex(),
		Deleted:  n,
		Cascade:  cascade,
	})
	ctx.JSON(http.StatusOK, api_models.DeleteResponse{
		Message: r.entity + " successfully deleted",
		Deleted: n,
	})
}
