package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication / Authorization ────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrForbidden     ErrCode = "FORBIDDEN"
	ErrFounderOnly   ErrCode = "FOUNDER_ONLY"
	ErrNotClubMember ErrCode = "NOT_CLUB_MEMBER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Quiz-specific ─────────────────────────────────────────────────
	ErrQuizNotFound        ErrCode = "QUIZ_NOT_FOUND"
	ErrUpstreamInvalid     ErrCode = "GENERATOR_INVALID_RESPONSE"
	ErrMalformedQuiz       ErrCode = "MALFORMED_QUIZ"
	ErrAnswerCountMismatch ErrCode = "ANSWER_COUNT_MISMATCH"

	// ─── Membership ────────────────────────────────────────────────────
	ErrAlreadyMember   ErrCode = "ALREADY_MEMBER"
	ErrRequestPending  ErrCode = "REQUEST_PENDING"
	ErrRequestNotFound ErrCode = "REQUEST_NOT_FOUND"

	// ─── Files ─────────────────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication / Authorization ────────────────────────────────
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."
	case ErrTokenInvalid:
		return "El token de autenticación no es válido."
	case ErrForbidden:
		return "No tienes permiso para acceder a este recurso."
	case ErrFounderOnly:
		return "Solo el fundador del club puede realizar esta acción."
	case ErrNotClubMember:
		return "No eres participante de este club."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validación falló. Revisa los datos enviados."
	case ErrInvalidID:
		return "El formato del identificador no es válido."
	case ErrInvalidPayload:
		return "El cuerpo de la solicitud no es válido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso no encontrado."
	case ErrConflict:
		return "El recurso ya existe."

	// ─── Quiz-specific ─────────────────────────────────────────────────
	case ErrQuizNotFound:
		return "No existe un quiz para este recurso."
	case ErrUpstreamInvalid:
		return "El servicio de generación de quizzes devolvió una respuesta inválida."
	case ErrMalformedQuiz:
		return "El quiz generado no tiene una estructura consistente."
	case ErrAnswerCountMismatch:
		return "La cantidad de respuestas no coincide con la cantidad de preguntas."

	// ─── Membership ────────────────────────────────────────────────────
	case ErrAlreadyMember:
		return "El usuario ya es participante del club."
	case ErrRequestPending:
		return "Ya existe una solicitud de ingreso pendiente."
	case ErrRequestNotFound:
		return "No existe una solicitud de ingreso para este usuario."

	// ─── Files ─────────────────────────────────────────────────────────
	case ErrFileRequired:
		return "Se requiere subir un archivo."
	case ErrUnsupportedFile:
		return "Tipo de archivo no soportado."
	case ErrFileTooLarge:
		return "El archivo supera el tamaño máximo permitido."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas solicitudes. Inténtalo de nuevo más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Ocurrió un error interno del servidor."
	default:
		return "Ocurrió un error inesperado."
	}
}
