package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/askdb/askdb/internal/sqlgen"
)

// chatRequest mirrors the wire shape the UI sends: the new message plus
// the prior conversation as [user, bot] string pairs, oldest first.
type chatRequest struct {
	Message string     `json:"message"`
	History [][]string `json:"history"`
}

type chatResponse struct {
	Reply       string `json:"reply"`
	Locale      string `json:"locale"`
	SQLQuery    string `json:"sql_query,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

func handleChat(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Assistant == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "CHAT_NOT_CONFIGURED", "chat dependencies are not configured", false, nil)
		return
	}

	var request chatRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid chat request body", false, map[string]any{"details": err.Error()})
		return
	}

	if strings.TrimSpace(request.Message) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "MESSAGE_REQUIRED", "message is required", false, nil)
		return
	}

	history, err := historyTurns(request.History)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_HISTORY", err.Error(), false, nil)
		return
	}

	response := deps.Assistant.Answer(r.Context(), request.Message, history)
	writeJSON(w, http.StatusOK, chatResponse{
		Reply:       response.Reply,
		Locale:      string(response.Locale),
		SQLQuery:    response.SQLQuery,
		Explanation: response.Explanation,
	})
}

func historyTurns(pairs [][]string) ([]sqlgen.Turn, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	turns := make([]sqlgen.Turn, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("history entry %d must be a [user, bot] pair", i)
		}
		turns = append(turns, sqlgen.Turn{User: pair[0], Bot: pair[1]})
	}
	return turns, nil
}
