package internal

import (
	"applepay/config"
	"applepay/entity"
	"applepay/services"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/julienschmidt/httprouter"
	"net"
	"net/http"
)

const (
	paymentContext    = "/api/payment-context"
	validateMerchant  = "/api/validate-merchant"
	submitPayment     = "/api/submit-payment"
	domainAssociation = "/.well-known/apple-developer-merchantid-domain-association"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	relay      services.Relay
	logger     services.LogHandler
}

func NewServer(conf *config.Config) *Server {

	server := Server{
		conf: conf,
	}

	// register itself as a router for httpServer handler
	router := httprouter.New()
	server.Register(router)
	server.httpServer = &http.Server{
		Handler: router,
	}

	return &server
}

func (s *Server) Register(router *httprouter.Router) {
	router.POST(paymentContext, s.paymentContext)
	router.POST(validateMerchant, s.validateMerchant)
	router.POST(submitPayment, s.submitPayment)
	router.GET(domainAssociation, s.domainAssociation)
}

func (s *Server) SetRelayService(relay services.Relay) {
	s.relay = relay
}

func (s *Server) SetLogger(logger services.LogHandler) {
	s.logger = logger
}

func (s *Server) Start() error {
	if s.conf == nil {
		return fmt.Errorf("configuration not loaded")
	}

	serverAddress := fmt.Sprintf("%s:%s", s.conf.Listen.BindIP, s.conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	if s.conf.Listen.TLS {
		s.logger.Info(fmt.Sprintf("starting https TLS on %s", serverAddress))
		err = s.httpServer.ServeTLS(listener, s.conf.Listen.CertFile, s.conf.Listen.KeyFile)
	} else {
		s.logger.Info(fmt.Sprintf("starting http on %s", serverAddress))
		err = s.httpServer.Serve(listener)
	}

	return err
}

func (s *Server) paymentContext(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	var request entity.PaymentContextRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			s.logger.Warn(fmt.Sprintf("[%s] payment context: decode request body; %v", reqID, err))
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := s.relay.GetPaymentContext(ctx, &request)
	if err != nil {
		s.respondError(w, reqID, "payment context", "failed to initialize payment context", err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) validateMerchant(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	var request entity.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] validate merchant: decode request body; %v", reqID, err))
		s.writeError(w, http.StatusBadRequest, "validationUrl is required")
		return
	}

	session, err := s.relay.ValidateMerchant(ctx, request.ValidationUrl)
	if err != nil {
		s.respondError(w, reqID, "validate merchant", "merchant validation failed", err)
		return
	}

	// the signed session descriptor goes back to the payment sheet verbatim
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(session); err != nil {
		s.logger.Error(fmt.Sprintf("[%s] validate merchant: write response", reqID), err)
	}
}

func (s *Server) submitPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := WithRequestID(r.Context())
	reqID := GetRequestID(ctx)

	var submission entity.PaymentSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		s.logger.Warn(fmt.Sprintf("[%s] submit payment: decode request body; %v", reqID, err))
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := s.relay.SubmitPayment(ctx, &submission)
	if err != nil {
		s.respondError(w, reqID, "submit payment", "payment processing failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, response)
}

// domainAssociation serves the Apple domain verification file byte-for-byte
// from the configured path. The content is an opaque platform artifact.
func (s *Server) domainAssociation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	path := s.conf.ApplePay.DomainAssociationFile
	if path == "" {
		s.logger.Warn("domain association file not configured")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

// respondError maps the error taxonomy to the HTTP surface: client-caused
// input errors become 400 with their own safe message, everything else
// becomes 500 with a generic message. Raw processor payloads stay in the
// server-side logs only.
func (s *Server) respondError(w http.ResponseWriter, reqID, operation, safeMessage string, err error) {
	var input *InputError
	if errors.As(err, &input) {
		s.logger.Warn(fmt.Sprintf("[%s] %s: %s", reqID, operation, input.Message))
		s.writeError(w, http.StatusBadRequest, input.Message)
		return
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		s.logger.Error(fmt.Sprintf("[%s] %s: %s", reqID, operation, upstream.Detail()), err)
	} else {
		s.logger.Error(fmt.Sprintf("[%s] %s", reqID, operation), err)
	}
	s.writeError(w, http.StatusInternalServerError, safeMessage)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
