package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agbru/bigadd/internal/digits"
	"github.com/agbru/bigadd/internal/service"
	"github.com/agbru/bigadd/internal/store"
	"github.com/agbru/bigadd/pkg/models"
)

// DefaultStrategy is used when /add names none.
const DefaultStrategy = "optimized"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.HealthResponse{Status: "healthy", Timestamp: time.Now().Unix()})
}

// handleStrategies lists the registered strategies in selector order.
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	reg := s.service.Strategies()
	resp := models.StrategiesResponse{Strategies: []models.StrategyInfo{}}
	for _, name := range reg.List() {
		sel, _ := reg.Selector(name)
		resp.Strategies = append(resp.Strategies, models.StrategyInfo{
			Name:     name,
			Selector: sel,
			OutputID: reg.MustCreate(name).OutputID(),
		})
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// handleAdd runs one addition. The operands are given either literally (a
// and b, most-significant digit first) or as widths to generate (n1 and n2,
// with an optional seed).
//
// Parameters:
//   - w: The HTTP response writer.
//   - r: The HTTP request.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	req, err := s.parseAddParams(r)
	if err != nil {
		var parseErr AddParseError
		if errors.As(err, &parseErr) {
			s.writeErrorResponse(w, parseErr.StatusCode, parseErr.Message)
		} else {
			s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	res, err := s.service.Add(ctx, req)
	switch {
	case errors.Is(err, service.ErrMaxDigitsExceeded):
		s.writeErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Operands exceed the maximum width (%d digits). This limit prevents resource exhaustion.", s.securityConfig.MaxDigits))
		return
	case errors.Is(err, service.ErrProcessesOutOfRange):
		s.writeErrorResponse(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid 'np' parameter: must be between 1 and %d", s.securityConfig.MaxProcesses))
		return
	}

	s.writeJSONResponse(w, http.StatusOK, buildAddResponse(req, res, err))
}

// parseAddParams extracts and validates the /add query parameters.
//
// Parameters:
//   - r: The HTTP request containing query parameters.
//
// Returns:
//   - service.Request: The addition to run.
//   - error: An AddParseError if validation fails, nil otherwise.
func (s *Server) parseAddParams(r *http.Request) (service.Request, error) {
	q := r.URL.Query()
	req := service.Request{Strategy: q.Get("strategy"), Processes: s.cfg.Processes}
	if req.Strategy == "" {
		req.Strategy = DefaultStrategy
	}
	if req.Processes < 1 {
		req.Processes = 1
	}
	if np := q.Get("np"); np != "" {
		v, err := strconv.Atoi(np)
		if err != nil {
			return req, badRequest("Invalid 'np' parameter: must be an integer")
		}
		req.Processes = v
	}

	if q.Get("a") != "" || q.Get("b") != "" {
		var err error
		if req.A, err = parseOperand(q.Get("a"), "a"); err != nil {
			return req, err
		}
		if req.B, err = parseOperand(q.Get("b"), "b"); err != nil {
			return req, err
		}
		return req, nil
	}

	n1, err := parseCount(q.Get("n1"), "n1")
	if err != nil {
		return req, err
	}
	n2, err := parseCount(q.Get("n2"), "n2")
	if err != nil {
		return req, err
	}
	if max(n1, n2) > s.securityConfig.MaxDigits && s.securityConfig.MaxDigits > 0 {
		return req, badRequest(fmt.Sprintf("Operands exceed the maximum width (%d digits)", s.securityConfig.MaxDigits))
	}
	var seed int64
	if v := q.Get("seed"); v != "" {
		if seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return req, badRequest("Invalid 'seed' parameter: must be an integer")
		}
	}
	gen := store.NewMemoryStore(store.WithSeed(seed))
	if req.A, err = gen.Generate(store.FirstNumber, n1); err != nil {
		return req, err
	}
	if req.B, err = gen.Generate(store.SecondNumber, n2); err != nil {
		return req, err
	}
	return req, nil
}

func parseOperand(text, name string) (digits.Sequence, error) {
	if text == "" {
		return nil, badRequest(fmt.Sprintf("Missing '%s' parameter", name))
	}
	seq, err := digits.Parse(text)
	if err != nil {
		return nil, badRequest(fmt.Sprintf("Invalid '%s' parameter: must be decimal digits", name))
	}
	return seq, nil
}

func parseCount(text, name string) (int, error) {
	if text == "" {
		return 0, badRequest(fmt.Sprintf("Missing '%s' parameter (or give 'a' and 'b')", name))
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 {
		return 0, badRequest(fmt.Sprintf("Invalid '%s' parameter: must be a positive integer", name))
	}
	return n, nil
}

func badRequest(msg string) AddParseError {
	return AddParseError{Message: msg, StatusCode: http.StatusBadRequest}
}

// buildAddResponse renders the outcome of an addition.
func buildAddResponse(req service.Request, res *service.Result, err error) models.AddResponse {
	resp := models.AddResponse{
		Strategy:  req.Strategy,
		Processes: req.Processes,
		Digits:    max(len(req.A), len(req.B)),
	}
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Sum = res.Sum.Sequence().String()
	resp.Overflow = res.Sum.Overflow
	resp.Verified = res.Verified
	resp.Duration = res.Duration.String()
	return resp
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Printf("Error encoding JSON response: %v", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
