package service

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/sahara-wellness/backend/internal/pkg/model"
	"github.com/sahara-wellness/backend/internal/pkg/service/api"
	"github.com/sahara-wellness/backend/internal/pkg/utils"
)

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, "Sahara Backend is healthy.")
	}
}

func debug(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		res := map[string]interface{}{"version": data.Version}
		for k, v := range data.Debug {
			res[k] = v
		}
		return c.JSON(http.StatusOK, res)
	}
}

func chat(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var input api.ChatInput
		if err := utils.TakeJSONInput(c, &input); err != nil {
			// a missing or malformed body degrades to an empty message
			log.Ctx(ctx).Debug().Err(err).Msg("no chat input")
			input = api.ChatInput{}
		}
		res, err := data.Chat.Reply(ctx, input.UserID, input.Message)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("can't handle chat")
			return c.JSON(http.StatusInternalServerError,
				api.ChatReply{Reply: "I'm having a little trouble thinking right now."})
		}
		return c.JSON(http.StatusOK, res)
	}
}

func resourceList(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		limit := 100
		if s := c.QueryParam("limit"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil {
				return utils.ProcessError(model.NewWrongFieldError("limit", s))
			}
			limit = v
		}
		res, err := data.Resources.ListResources(ctx, limit)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("can't list resources")
			return utils.ProcessError(err)
		}
		if res == nil {
			res = []map[string]interface{}{}
		}
		return c.JSON(http.StatusOK, res)
	}
}

func resourceGet(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		res, err := data.Resources.GetResource(ctx, c.Param("id"))
		if err != nil {
			return resourceError(c, err)
		}
		return c.JSON(http.StatusOK, res)
	}
}

func resourceCreate(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		input := map[string]interface{}{}
		if err := utils.TakeJSONInput(c, &input); err != nil || len(input) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Missing/invalid JSON body")
		}
		id, err := data.Resources.CreateResource(ctx, input)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("can't create resource")
			return utils.ProcessError(err)
		}
		input["id"] = id
		return c.JSON(http.StatusCreated, input)
	}
}

func resourceUpdate(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id := c.Param("id")
		input := map[string]interface{}{}
		if err := utils.TakeJSONInput(c, &input); err != nil || len(input) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Missing/invalid JSON body")
		}
		if err := data.Resources.UpdateResource(ctx, id, input); err != nil {
			return resourceError(c, err)
		}
		input["id"] = id
		return c.JSON(http.StatusOK, input)
	}
}

func resourceDelete(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := data.Resources.DeleteResource(ctx, c.Param("id")); err != nil {
			return resourceError(c, err)
		}
		return c.JSON(http.StatusOK, api.DeleteResult{Message: "Resource deleted"})
	}
}

func resourceError(c echo.Context, err error) error {
	if errors.Is(err, model.ErrNoRecord) {
		return echo.NewHTTPError(http.StatusNotFound, "Resource not found")
	}
	log.Ctx(c.Request().Context()).Error().Err(err).Msg("resource operation failed")
	return utils.ProcessError(err)
}

func journalSync(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var input api.JournalInput
		if err := utils.TakeJSONInput(c, &input); err != nil {
			log.Ctx(ctx).Error().Err(err).Send()
			return err
		}
		if input.UserID == "" || input.Entry == nil {
			return c.JSON(http.StatusBadRequest,
				api.JournalResult{Status: "error", Message: "userId and entry are required"})
		}
		entry, ok := input.Entry.(map[string]interface{})
		if !ok {
			// clients may send a bare string entry
			entry = map[string]interface{}{"text": input.Entry}
		}
		if err := data.Journal.AddJournalEntry(ctx, input.UserID, entry); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("can't save journal entry")
			return c.JSON(http.StatusInternalServerError,
				api.JournalResult{Status: "error", Message: "Could not save entry"})
		}
		return c.JSON(http.StatusOK, api.JournalResult{Status: "success"})
	}
}
