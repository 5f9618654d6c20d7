package controller

import (
	"jobmatch-be/internal/dto"
	"jobmatch-be/internal/entity"
	"jobmatch-be/internal/pkg/serverutils"
	"jobmatch-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMatchingController interface {
	RegisterRoutes(r fiber.Router)
	GetMyJobMatches(ctx *fiber.Ctx) error
	GetJobCandidates(ctx *fiber.Ctx) error
	IndexMyProfile(ctx *fiber.Ctx) error
	IndexJob(ctx *fiber.Ctx) error
	GetIndexingStatus(ctx *fiber.Ctx) error
	GetIndexingStats(ctx *fiber.Ctx) error
}

type matchingController struct {
	matchingService service.IMatchingService
	indexingService service.IIndexingService
}

func NewMatchingController(matchingService service.IMatchingService, indexingService service.IIndexingService) IMatchingController {
	return &matchingController{
		matchingService: matchingService,
		indexingService: indexingService,
	}
}

func (c *matchingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/v1/matching")
	h.Use(serverutils.JwtMiddleware)
	h.Get("my-job-matches", c.GetMyJobMatches)
	h.Get("jobs/:jobId/candidates", c.GetJobCandidates)
	h.Post("index/my-profile", c.IndexMyProfile)
	h.Post("index/jobs/:jobId", c.IndexJob)
	h.Get("index/status/:documentType/:documentId", c.GetIndexingStatus)
	h.Get("admin/stats", c.GetIndexingStats)
}

func parseMatchQuery(ctx *fiber.Ctx) (*dto.MatchQuery, error) {
	var q dto.MatchQuery
	if err := ctx.QueryParser(&q); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid pagination parameters")
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return nil, err
	}
	return &q, nil
}

func parseUUIDParam(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

func (c *matchingController) GetMyJobMatches(ctx *fiber.Ctx) error {
	caller, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	q, err := parseMatchQuery(ctx)
	if err != nil {
		return err
	}

	res, err := c.matchingService.GetJobMatchesForCandidate(ctx.UserContext(), caller, q.Page, q.PageSize)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get job matches", res))
}

func (c *matchingController) GetJobCandidates(ctx *fiber.Ctx) error {
	caller, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	jobId, err := parseUUIDParam(ctx, "jobId")
	if err != nil {
		return err
	}
	q, err := parseMatchQuery(ctx)
	if err != nil {
		return err
	}

	res, err := c.matchingService.GetCandidateMatchesForJob(ctx.UserContext(), caller, jobId, q.Page, q.PageSize)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get candidate matches", res))
}

func (c *matchingController) IndexMyProfile(ctx *fiber.Ctx) error {
	caller, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	res, err := c.indexingService.RequestProfileIndexing(ctx.UserContext(), caller)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.AcceptedResponse("Profile queued for indexing", res))
}

func (c *matchingController) IndexJob(ctx *fiber.Ctx) error {
	caller, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	jobId, err := parseUUIDParam(ctx, "jobId")
	if err != nil {
		return err
	}

	res, err := c.indexingService.RequestJobIndexing(ctx.UserContext(), caller, jobId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.AcceptedResponse("Job queued for indexing", res))
}

func (c *matchingController) GetIndexingStatus(ctx *fiber.Ctx) error {
	caller, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}
	documentType, err := entity.ParseDocumentType(ctx.Params("documentType"))
	if err != nil {
		return service.ErrInvalidDocumentType
	}
	documentId, err := parseUUIDParam(ctx, "documentId")
	if err != nil {
		return err
	}

	res, err := c.indexingService.GetStatus(ctx.UserContext(), caller, documentType, documentId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get indexing status", res))
}

func (c *matchingController) GetIndexingStats(ctx *fiber.Ctx) error {
	caller, err := serverutils.GetPrincipal(ctx)
	if err != nil {
		return err
	}

	res, err := c.indexingService.GetStats(ctx.UserContext(), caller)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get indexing stats", res))
}
