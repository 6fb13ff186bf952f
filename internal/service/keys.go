package service

import "strings"

// Схема ключей хранилища (персистентный контракт), на токен T:
//
//	множества Token/Unassigned/Assigned содержат элемент "token:T";
//	"token:T:tokens"     — lease-таймер (полное оставшееся время жизни);
//	"token:T:assigned"   — таймер назначения (есть только у арендованного);
//	"token:T:unassigned" — таймер простоя (есть только у свободного).
const (
	memberPrefix = "token:"

	suffixLease      = ":tokens"
	suffixAssigned   = ":assigned"
	suffixUnassigned = ":unassigned"

	// markerValue — значение таймер-ключей; смысл несёт только их TTL.
	markerValue = "active"
)

// timerKind — тип таймер-ключа, восстановленный из имени истёкшего ключа.
type timerKind int

const (
	timerUnknown timerKind = iota
	timerLease
	timerAssigned
	timerUnassigned
)

func tokenMember(id string) string { return memberPrefix + id }

func idFromMember(member string) string { return strings.TrimPrefix(member, memberPrefix) }

func leaseKey(member string) string      { return member + suffixLease }
func assignedKey(member string) string   { return member + suffixAssigned }
func unassignedKey(member string) string { return member + suffixUnassigned }

// splitTimerKey разбирает имя истёкшего ключа на элемент множества и тип
// таймера. Для чужих ключей возвращает ok=false.
func splitTimerKey(key string) (member string, kind timerKind, ok bool) {
	if !strings.HasPrefix(key, memberPrefix) {
		return "", timerUnknown, false
	}

	switch {
	case strings.HasSuffix(key, suffixLease):
		return strings.TrimSuffix(key, suffixLease), timerLease, true
	case strings.HasSuffix(key, suffixAssigned):
		return strings.TrimSuffix(key, suffixAssigned), timerAssigned, true
	case strings.HasSuffix(key, suffixUnassigned):
		return strings.TrimSuffix(key, suffixUnassigned), timerUnassigned, true
	}

	return "", timerUnknown, false
}
