package httpapi

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/domain/attendance"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) submit(c *fiber.Ctx) error {
	var cand attendance.Candidate
	if err := c.BodyParser(&cand); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	rec, err := s.svc.Submit(c.UserContext(), cand)
	if err != nil {
		var verr *attendance.ValidationError
		switch {
		case errors.As(err, &verr):
			fields := make(map[string][]string, len(verr.Fields))
			for _, f := range verr.Fields {
				fields[f.Field] = append(fields[f.Field], f.Rule)
			}
			return jsonValidationError(c, fields)
		case errors.Is(err, attendance.ErrPersistence):
			s.requestLogger(c).WithError(err).Error("Submission not persisted")
			return jsonError(c, fiber.StatusInternalServerError, "record could not be saved")
		default:
			s.requestLogger(c).WithError(err).Error("Submission failed")
			return jsonError(c, fiber.StatusInternalServerError, "")
		}
	}

	s.requestLogger(c).WithField("record_id", rec.ID).Info("Record submitted")
	return jsonCreated(c, "record submitted", rec)
}

func (s *Server) view(c *fiber.Ctx) error {
	criteria := attendance.Criteria{
		Date:  strings.TrimSpace(c.Query("date")),
		Class: strings.TrimSpace(c.Query("class")),
	}
	if criteria.Date != "" {
		if _, err := time.Parse(attendance.DateLayout, criteria.Date); err != nil {
			return jsonError(c, fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
	}
	return jsonOK(c, "", s.svc.View(criteria))
}

func (s *Server) weekly(c *fiber.Ctx) error {
	var asOf time.Time
	if v := strings.TrimSpace(c.Query("as_of")); v != "" {
		t, err := time.ParseInLocation(attendance.DateLayout, v, s.svc.Location())
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "as_of must be YYYY-MM-DD")
		}
		asOf = t
	}
	return jsonOK(c, "", s.svc.Weekly(asOf))
}

func (s *Server) remove(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "id must be numeric")
	}

	removed, err := s.svc.Remove(c.UserContext(), id, c.QueryBool("confirm"))
	if err != nil {
		if errors.Is(err, attendance.ErrConfirmationRequired) {
			return jsonError(c, fiber.StatusConflict, "deletion requires confirm=true")
		}
		s.requestLogger(c).WithError(err).WithField("record_id", id).Error("Failed to delete record")
		return jsonError(c, fiber.StatusInternalServerError, "record could not be deleted")
	}
	return jsonOK(c, "", fiber.Map{"removed": removed})
}

func (s *Server) clear(c *fiber.Ctx) error {
	n := len(s.svc.Records())
	if err := s.svc.Clear(c.UserContext(), c.QueryBool("confirm")); err != nil {
		if errors.Is(err, attendance.ErrConfirmationRequired) {
			return jsonError(c, fiber.StatusConflict, "clearing requires confirm=true")
		}
		s.requestLogger(c).WithError(err).Error("Failed to clear records")
		return jsonError(c, fiber.StatusInternalServerError, "records could not be cleared")
	}
	s.requestLogger(c).WithField("removed", n).Warn("All records cleared")
	return jsonOK(c, "all records cleared", fiber.Map{"removed": n})
}

func (s *Server) exportCSV(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := app.WriteCSV(&buf, s.svc.Records()); err != nil {
		s.requestLogger(c).WithError(err).Error("CSV export failed")
		return jsonError(c, fiber.StatusInternalServerError, "export failed")
	}
	return s.sendExport(c, "csv", "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) exportXLSX(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := app.WriteXLSX(&buf, s.svc.Records()); err != nil {
		s.requestLogger(c).WithError(err).Error("XLSX export failed")
		return jsonError(c, fiber.StatusInternalServerError, "export failed")
	}
	return s.sendExport(c, "xlsx", xlsxContentType, buf.Bytes())
}

func (s *Server) sendExport(c *fiber.Ctx, ext, contentType string, body []byte) error {
	name := app.ExportFilename(s.svc.Today().Format(attendance.DateLayout), ext)
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(body)
}
