// Package transaction exposes the fund request workflow over HTTP.
package transaction

import (
	"fmt"

	"github.com/finsova/fundrequest/pkg/config"
	"github.com/finsova/fundrequest/pkg/domain"
	"github.com/finsova/fundrequest/pkg/domain/transaction"
	"github.com/finsova/fundrequest/pkg/domain/user"
	"github.com/finsova/fundrequest/pkg/export"
	"github.com/finsova/fundrequest/pkg/middleware"
	authsvc "github.com/finsova/fundrequest/pkg/service/auth"
	txsvc "github.com/finsova/fundrequest/pkg/service/transaction"
	"github.com/finsova/fundrequest/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Routes registers the fund request endpoints. The fixed paths are added
// before /:id so they are not captured by it.
func Routes(app *fiber.App, txSvc *txsvc.Service, authSvc *authsvc.Service, cfg *config.App) {
	g := app.Group("/transactions", middleware.JwtProtected(cfg.Auth.Jwt.Secret))
	g.Post("/", Submit(txSvc, authSvc))
	g.Get("/", List(txSvc, authSvc))
	g.Get("/summary", Summary(txSvc, authSvc))
	g.Get("/export", Export(txSvc, authSvc))
	g.Get("/:id", Get(txSvc, authSvc))
	g.Post("/:id/decision", Decide(txSvc, authSvc))
}

// Submit creates a Pending fund request owned by the caller.
// @Summary Submit a fund request
// @Description Record a bank transfer into a company deposit account for admin review
// @Tags transactions
// @Accept json
// @Produce json
// @Param request body SubmitRequest true "Transfer details"
// @Success 201 {object} common.Response{data=transaction.Transaction}
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Failure 429 {object} common.ProblemDetails
// @Failure 500 {object} common.ProblemDetails
// @Router /transactions [post]
// @Security Bearer
func Submit(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		body, err := common.BindAndValidate[SubmitRequest](c)
		if body == nil {
			return err // error response already written
		}
		in, err := body.toInput()
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request body", err)
		}
		tx, err := txSvc.Submit(c.UserContext(), p, in)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't submit fund request", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Fund request submitted", tx)
	}
}

// List returns the caller's view of the fund requests, newest first.
// @Summary List fund requests
// @Description Admins see every request; users only their own
// @Tags transactions
// @Produce json
// @Param status query string false "Pending, Approved or Rejected"
// @Param dateFrom query string false "RFC 3339 or YYYY-MM-DD, inclusive"
// @Param dateTo query string false "RFC 3339 or YYYY-MM-DD, inclusive"
// @Param submittedBy query string false "Owner user ID"
// @Success 200 {object} common.Response{data=[]transaction.Transaction}
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /transactions [get]
// @Security Bearer
func List(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, f, err := principalAndFilter(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err)
		}
		seq, err := txSvc.List(c.UserContext(), p, f)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't list fund requests", err)
		}
		items := make([]*transaction.Transaction, 0)
		for tx := range seq {
			items = append(items, tx)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Fund requests fetched", items)
	}
}

// Summary returns the dashboard counters.
// @Summary Fund request summary
// @Description Counts by status plus submissions today and this month (UTC). Admin only.
// @Tags transactions
// @Produce json
// @Success 200 {object} common.Response{data=txsvc.Summary}
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /transactions/summary [get]
// @Security Bearer
func Summary(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := common.CurrentPrincipal(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err)
		}
		sum, err := txSvc.Summary(c.UserContext(), p)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't compute summary", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Summary computed", sum)
	}
}

// Export downloads the same view as List.
// @Summary Export fund requests
// @Description Render the filtered list as CSV (delimited) or a text table (tabular)
// @Tags transactions
// @Produce text/csv
// @Produce text/plain
// @Param format query string true "delimited or tabular"
// @Param status query string false "Pending, Approved or Rejected"
// @Param dateFrom query string false "RFC 3339 or YYYY-MM-DD, inclusive"
// @Param dateTo query string false "RFC 3339 or YYYY-MM-DD, inclusive"
// @Param submittedBy query string false "Owner user ID"
// @Success 200 {file} file
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Router /transactions/export [get]
// @Security Bearer
func Export(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, f, err := principalAndFilter(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid query", err)
		}
		format := c.Query("format")
		out, err := txSvc.Export(c.UserContext(), p, f, format)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't export fund requests", err)
		}
		ft, _ := export.ParseFormat(format)
		c.Set(fiber.HeaderContentType, ft.ContentType())
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="transactions.%s"`, ft.Extension()))
		return c.Status(fiber.StatusOK).Send(out)
	}
}

// Get returns one fund request.
// @Summary Get fund request by ID
// @Description Users may only read their own requests
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} common.Response{data=transaction.Transaction}
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Router /transactions/{id} [get]
// @Security Bearer
func Get(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, id, err := principalAndID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		tx, err := txSvc.Get(c.UserContext(), p, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Fund request not found", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Fund request found", tx)
	}
}

// Decide approves or rejects a Pending fund request.
// @Summary Decide a fund request
// @Description Approve or reject a Pending request with an optional remark. Admin only.
// @Tags transactions
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID"
// @Param request body DecisionRequest true "Decision"
// @Success 200 {object} common.Response{data=transaction.Transaction}
// @Failure 400 {object} common.ProblemDetails
// @Failure 401 {object} common.ProblemDetails
// @Failure 403 {object} common.ProblemDetails
// @Failure 404 {object} common.ProblemDetails
// @Failure 409 {object} common.ProblemDetails
// @Router /transactions/{id}/decision [post]
// @Security Bearer
func Decide(txSvc *txsvc.Service, authSvc *authsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, id, err := principalAndID(c, authSvc)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid request", err)
		}
		body, err := common.BindAndValidate[DecisionRequest](c)
		if body == nil {
			return err // error response already written
		}
		tx, err := txSvc.Decide(c.UserContext(), p, id, body.Decision, body.AdminRemark)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Couldn't decide fund request", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Fund request "+string(tx.Status), tx)
	}
}

func principalAndID(c *fiber.Ctx, authSvc *authsvc.Service) (p user.Principal, id uuid.UUID, err error) {
	if p, err = common.CurrentPrincipal(c, authSvc); err != nil {
		return
	}
	if id, err = uuid.Parse(c.Params("id")); err != nil {
		err = domain.Validation("id", "must be a valid UUID")
	}
	return
}

func principalAndFilter(c *fiber.Ctx, authSvc *authsvc.Service) (p user.Principal, f transaction.Filter, err error) {
	if p, err = common.CurrentPrincipal(c, authSvc); err != nil {
		return
	}
	var q ListQuery
	if err = c.QueryParser(&q); err != nil {
		err = domain.Validation("query", err.Error())
		return
	}
	f, err = q.toFilter()
	return
}
