package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/qdm12/reprint"
	"github.com/veloflow/cruisectl/internal/configuration"
	"github.com/veloflow/cruisectl/internal/controller"
)

type controllerStatus struct {
	Config configuration.Configuration `json:"config"`
	State  controller.Snapshot         `json:"state"`
}

func registerControllerEndpoints(rest *echo.Echo, speedController controller.SpeedController) {
	group := rest.Group("/controller")

	group.GET("/", func(c echo.Context) error {
		return getController(c, speedController)
	})
}

// returns the controller configuration and a snapshot of its observable
// state. The configuration is deep copied so api consumers never alias
// the live config.
func getController(c echo.Context, speedController controller.SpeedController) error {
	var config configuration.Configuration
	if err := reprint.FromTo(&configuration.CurrentConfig, &config); err != nil {
		return returnError(c, err)
	}

	data := controllerStatus{
		Config: config,
		State:  speedController.Snapshot(),
	}
	return c.JSONPretty(http.StatusOK, data, indentationChar)
}
