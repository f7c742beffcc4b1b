package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/guilherme-santos/uniplanner/internal"
	"github.com/guilherme-santos/uniplanner/internal/planner"
)

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &internal.ValidationError{Message: "invalid id", Fields: []string{"id"}}
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &internal.ValidationError{Message: "invalid request body"}
	}
	return nil
}

func (s *Server) listSubjects(c *fiber.Ctx) error {
	subjects, err := s.planner.Subjects(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(subjects)
}

func (s *Server) getSubject(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	subject, err := s.planner.Subject(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(subject)
}

func (s *Server) createSubject(c *fiber.Ctx) error {
	var req planner.SubjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	subject, err := s.planner.CreateSubject(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(subject)
}

func (s *Server) updateSubject(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req planner.SubjectRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	subject, err := s.planner.UpdateSubject(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(subject)
}

func (s *Server) deleteSubject(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.planner.DeleteSubject(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listEvents(c *fiber.Ctx) error {
	events, err := s.planner.Events(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(events)
}

func (s *Server) getEvent(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	event, err := s.planner.Event(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(event)
}

func (s *Server) createEvent(c *fiber.Ctx) error {
	var req planner.EventRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	event, err := s.planner.CreateEvent(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

func (s *Server) updateEvent(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req planner.EventRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	event, err := s.planner.UpdateEvent(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(event)
}

func (s *Server) deleteEvent(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.planner.DeleteEvent(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) addCalendarEvent(c *fiber.Ctx) error {
	var req planner.EventRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := s.planner.AddEvent(c.UserContext(), requestAccessToken(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func (s *Server) upcomingEvents(c *fiber.Ctx) error {
	events, err := s.planner.Upcoming(c.UserContext(), requestAccessToken(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"events": events})
}
