package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"miheater/internal/heater"
)

const (
	statusOK      = "ok"
	statusApplied = "applied"

	errGetState        = "failed to load state"
	errInvalidBodyPref = "invalid body: "
)

// TargetTemperatureRequest sets the target temperature in °C.
type TargetTemperatureRequest struct {
	Temperature *int `json:"temperature" binding:"required" example:"22"`
}

// BrightnessRequest sets the display brightness.
type BrightnessRequest struct {
	Brightness string `json:"brightness" binding:"required" example:"dim" enums:"bright,dim,off"`
}

// SwitchRequest turns a feature on or off.
type SwitchRequest struct {
	On *bool `json:"on" binding:"required" example:"true"`
}

// DelayOffRequest schedules a power-off; 0 cancels it.
type DelayOffRequest struct {
	Seconds *int `json:"seconds" binding:"required" example:"3600"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Get heater state
// @Description  Latest snapshot, served from cache or the database
// @Tags         heater
// @Produce      json
// @Success      200  {object}  models.HeaterState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/heater/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "heater_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Refresh heater state
// @Description  Reads every property from the device now
// @Tags         heater
// @Produce      json
// @Success      200  {object}  models.HeaterState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/heater/refresh [post]
// @Security     BearerAuth
func (h *Handler) refreshState(c *gin.Context) {
	st, err := h.services.Monitoring.Refresh(c.Request.Context())
	if err != nil {
		h.deviceError(c, "heater_refresh_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Get heater model
// @Tags         heater
// @Produce      json
// @Success      200  {object}  heater.ModelSpec
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/heater/model [get]
// @Security     BearerAuth
func (h *Handler) getModel(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Control.Model())
}

// @Summary      Power on
// @Tags         heater
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, ack, state"
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/heater/on [post]
// @Security     BearerAuth
func (h *Handler) powerOn(c *gin.Context) {
	h.apply(c, heater.Command{Kind: heater.CommandPower, On: true})
}

// @Summary      Power off
// @Tags         heater
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, ack, state"
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/heater/off [post]
// @Security     BearerAuth
func (h *Handler) powerOff(c *gin.Context) {
	h.apply(c, heater.Command{Kind: heater.CommandPower, On: false})
}

// @Summary      Set target temperature
// @Description  Must lie within the model's range (za1 16-32, ma1 20-32)
// @Tags         heater
// @Accept       json
// @Produce      json
// @Param        body  body      TargetTemperatureRequest  true  "Target temperature"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/heater/target-temperature [post]
// @Security     BearerAuth
func (h *Handler) setTargetTemperature(c *gin.Context) {
	var req TargetTemperatureRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	h.apply(c, heater.Command{Kind: heater.CommandTargetTemperature, Value: *req.Temperature})
}

// @Summary      Set display brightness
// @Tags         heater
// @Accept       json
// @Produce      json
// @Param        body  body      BrightnessRequest  true  "Brightness"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/heater/brightness [post]
// @Security     BearerAuth
func (h *Handler) setBrightness(c *gin.Context) {
	var req BrightnessRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	b, err := heater.ParseBrightness(req.Brightness)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.apply(c, heater.Command{Kind: heater.CommandBrightness, Brightness: b})
}

// @Summary      Enable or disable the buzzer
// @Tags         heater
// @Accept       json
// @Produce      json
// @Param        body  body      SwitchRequest  true  "Buzzer"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/heater/buzzer [post]
// @Security     BearerAuth
func (h *Handler) setBuzzer(c *gin.Context) {
	h.applySwitch(c, heater.CommandBuzzer)
}

// @Summary      Enable or disable the child lock
// @Tags         heater
// @Accept       json
// @Produce      json
// @Param        body  body      SwitchRequest  true  "Child lock"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/heater/child-lock [post]
// @Security     BearerAuth
func (h *Handler) setChildLock(c *gin.Context) {
	h.applySwitch(c, heater.CommandChildLock)
}

// @Summary      Schedule power-off
// @Description  Seconds from now, 0 cancels. Models counting in hours round down.
// @Tags         heater
// @Accept       json
// @Produce      json
// @Param        body  body      DelayOffRequest  true  "Delay"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/heater/delay-off [post]
// @Security     BearerAuth
func (h *Handler) setDelayOff(c *gin.Context) {
	var req DelayOffRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	h.apply(c, heater.Command{Kind: heater.CommandDelayOff, Value: *req.Seconds})
}

// @Summary      Set several parameters
// @Description  Keys: power, target_temperature, brightness, buzzer, child_lock, delay_off. All are validated before any is sent.
// @Tags         heater
// @Accept       json
// @Produce      json
// @Param        body  body      map[string]interface{}  true  "Parameters"
// @Success      200   {object}  map[string]interface{}  "status, acks, state"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/heater/params [post]
// @Security     BearerAuth
func (h *Handler) setParams(c *gin.Context) {
	var params map[string]any
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	acks, err := h.services.Control.SetParams(c.Request.Context(), params)
	if err != nil {
		h.deviceError(c, "heater_set_params_failed", err, "applied", len(acks))
		return
	}
	h.respondWithStatusAndState(c, gin.H{"acks": acks})
}

func (h *Handler) applySwitch(c *gin.Context, kind heater.CommandKind) {
	var req SwitchRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	h.apply(c, heater.Command{Kind: kind, On: *req.On})
}

func (h *Handler) apply(c *gin.Context, cmd heater.Command) {
	ack, err := h.services.Control.Apply(c.Request.Context(), cmd)
	if err != nil {
		h.deviceError(c, "heater_command_failed", err, "command", cmd.Kind.String())
		return
	}
	h.respondWithStatusAndState(c, gin.H{"ack": ack})
}

// respondWithStatusAndState includes the current state when it can be read.
func (h *Handler) respondWithStatusAndState(c *gin.Context, extra gin.H) {
	resp := gin.H{"status": statusApplied}
	for k, v := range extra {
		resp[k] = v
	}
	if st, err := h.services.Monitoring.GetState(c.Request.Context()); err == nil {
		resp["state"] = st
	}
	c.JSON(http.StatusOK, resp)
}
