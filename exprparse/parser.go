package exprparse

import (
	"strconv"

	"github.com/krux02/ttl/astshape"
)

func pos(t *Tokenizer, tok Token) astshape.Position {
	line, col := LineCol(t.code, tok.Offset)
	return astshape.Position{Line: line, Col: col}
}

func (t *Tokenizer) expectKind(tok Token, kind TokenKind) bool {
	if tok.Kind != kind {
		t.reportError(tok, "expected %s, got %s %q", kind, tok.Kind, tok.Value)
		return false
	}
	return true
}

// Parse reads a single TTL expression from code and returns its
// astshape.Node tree, or the accumulated parse errors.
func Parse(code string) (astshape.Node, []ParseError) {
	t := NewTokenizer(code)
	expr := parseExpr(t)
	if t.Peek().Kind != TkEof {
		t.reportError(t.Peek(), "unexpected trailing input %q", t.Peek().Value)
	}
	return expr, t.errors
}

// parseExpr dispatches on the lookahead token to decide between a call,
// an arrow function, an object literal, or a bare leaf. A parenthesized
// lookahead is ambiguous between "a call's argument list" (handled by
// the TkIdent '(' case below) and "an arrow function's parameter list"
// ((a, b) => ...), so callers that already consumed the callee name take
// the first path; this function only ever sees the second.
func parseExpr(t *Tokenizer) astshape.Node {
	switch t.Peek().Kind {
	case TkIdent:
		return parseIdentLed(t)
	case TkString:
		tok := t.Next()
		return astshape.NewString(unquote(tok.Value), pos(t, tok))
	case TkNumber:
		tok := t.Next()
		v, _ := strconv.ParseFloat(tok.Value, 64)
		return astshape.NewNumber(v, pos(t, tok))
	case TkOpenParen:
		return parseParenLed(t)
	case TkOpenBrace:
		return parseObjectLiteral(t)
	default:
		tok := t.Next()
		t.reportError(tok, "expected an expression, got %s %q", tok.Kind, tok.Value)
		return astshape.NewName("", pos(t, tok))
	}
}

// parseIdentLed handles the two shapes that start with a bare
// identifier: a call ("name(args...)") and a single-parameter arrow
// function ("name => expr"). Anything else is a plain name leaf.
func parseIdentLed(t *Tokenizer) astshape.Node {
	nameTok := t.Next()
	p := pos(t, nameTok)

	if t.Peek().Kind == TkArrow {
		t.Next() // consume '=>'
		body := parseExpr(t)
		return astshape.NewFunction(p, []astshape.Node{astshape.NewName(nameTok.Value, p)}, body)
	}

	if t.Peek().Kind != TkOpenParen {
		return astshape.NewName(nameTok.Value, p)
	}

	t.Next() // consume '('
	var args []astshape.Node
	for t.Peek().Kind != TkCloseParen {
		args = append(args, parseExpr(t))
		if t.Peek().Kind == TkComma {
			t.Next()
			continue
		}
		break
	}
	closeTok := t.Next()
	t.expectKind(closeTok, TkCloseParen)

	callee := astshape.NewName(nameTok.Value, p)
	return astshape.NewCall(p, callee, args...)
}

// parseParenLed handles a parenthesized arrow-function parameter list:
// "(a, b) => expr". A parenthesized group that is not followed by '=>'
// is not a shape TTL annotations use, and is reported as an error.
func parseParenLed(t *Tokenizer) astshape.Node {
	openTok := t.Next()
	p := pos(t, openTok)

	var params []astshape.Node
	for t.Peek().Kind != TkCloseParen {
		nameTok := t.Next()
		t.expectKind(nameTok, TkIdent)
		params = append(params, astshape.NewName(nameTok.Value, pos(t, nameTok)))
		if t.Peek().Kind == TkComma {
			t.Next()
			continue
		}
		break
	}
	closeTok := t.Next()
	t.expectKind(closeTok, TkCloseParen)

	arrowTok := t.Next()
	t.expectKind(arrowTok, TkArrow)

	body := parseExpr(t)
	return astshape.NewFunction(p, params, body)
}

// parseObjectLiteral reads "{ key: expr, [nameExpr]: expr, ... }", the
// sole argument shape record(...) accepts.
func parseObjectLiteral(t *Tokenizer) astshape.Node {
	openTok := t.Next()
	p := pos(t, openTok)

	var props []astshape.Node
	for t.Peek().Kind != TkCloseBrace {
		props = append(props, parseProperty(t))
		if t.Peek().Kind == TkComma {
			t.Next()
			continue
		}
		break
	}
	closeTok := t.Next()
	t.expectKind(closeTok, TkCloseBrace)

	return astshape.NewObjectLiteral(p, props...)
}

func parseProperty(t *Tokenizer) astshape.Node {
	if t.Peek().Kind == TkOpenBracket {
		openTok := t.Next()
		p := pos(t, openTok)
		keyTok := t.Next()
		t.expectKind(keyTok, TkIdent)
		closeTok := t.Next()
		t.expectKind(closeTok, TkCloseBracket)
		colonTok := t.Next()
		t.expectKind(colonTok, TkColon)
		value := parseExpr(t)
		key := astshape.NewName(keyTok.Value, pos(t, keyTok))
		return astshape.NewComputedProperty(p, key, value)
	}

	nameTok := t.Next()
	t.expectKind(nameTok, TkIdent)
	p := pos(t, nameTok)
	colonTok := t.Next()
	t.expectKind(colonTok, TkColon)
	value := parseExpr(t)
	return astshape.NewProperty(p, nameTok.Value, value)
}

func unquote(raw string) string {
	if len(raw) >= 2 {
		return raw[1 : len(raw)-1]
	}
	return raw
}
