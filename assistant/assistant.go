// Package assistant holds the scripted first-line responder. It answers a
// bounded number of turns per identity before the engine hands the visitor
// to the operator queue; the scripts are keyword-driven, with the reply
// language following the detected language of the question.
package assistant

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

type reply struct {
	pt string
	en string
}

var keywordReplies = []struct {
	keywords []string
	reply    reply
}{
	{
		keywords: []string{"tarefa", "task", "assignment"},
		reply: reply{
			pt: "Você gostaria de criar uma nova tarefa ou verificar suas tarefas pendentes?",
			en: "Would you like to create a new task or check your pending ones?",
		},
	},
	{
		keywords: []string{"prazo", "deadline", "due"},
		reply: reply{
			pt: "Me diga qual tarefa você quer verificar o prazo, ou use o painel para ver todas as datas.",
			en: "Tell me which task's deadline you want to check, or use the dashboard to see all dates.",
		},
	},
	{
		keywords: []string{"disciplina", "subject", "course"},
		reply: reply{
			pt: "Qual disciplina você está buscando? Posso listar suas tarefas por disciplina.",
			en: "Which subject are you looking for? I can list your tasks by subject.",
		},
	},
}

var fallback = reply{
	pt: `Desculpe, não entendi. Tente usar palavras como "tarefa", "prazo" ou "disciplina".`,
	en: `Sorry, I did not understand. Try words like "task", "deadline" or "subject".`,
}

var handoff = reply{
	pt: "Essa é nossa última interação automática. Um atendente humano foi avisado.",
	en: "This was our last automated interaction. A human operator has been notified.",
}

type Assistant struct {
	turnLimit int
}

func New(turnLimit int) *Assistant {
	return &Assistant{turnLimit: turnLimit}
}

// Respond composes the scripted answer for one turn. On the final budgeted
// turn the reply is always the hand-off script, whatever the question.
func (a *Assistant) Respond(content string, turn int) string {
	portuguese := isPortuguese(content)
	if turn >= a.turnLimit {
		return pick(handoff, portuguese)
	}
	lowered := strings.ToLower(content)
	for _, kr := range keywordReplies {
		for _, kw := range kr.keywords {
			if strings.Contains(lowered, kw) {
				return pick(kr.reply, portuguese)
			}
		}
	}
	return pick(fallback, portuguese)
}

func pick(r reply, portuguese bool) string {
	if portuguese {
		return r.pt
	}
	return r.en
}

// isPortuguese keeps the source scripts for Portuguese speakers and falls
// back to English for everything whatlanggo cannot pin down.
func isPortuguese(content string) bool {
	info := whatlanggo.Detect(content)
	return info.Lang.Iso6391() == "pt"
}
