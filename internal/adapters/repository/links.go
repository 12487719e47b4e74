package repository

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/okian/avalia/internal/domain/model"
	"github.com/okian/avalia/pkg/logger"
)

// LoadLinks reads projectId;evaluatorCpf pairs. A missing file yields no
// links. Short lines and non-positive project ids are skipped.
func LoadLinks(ctx context.Context, path string, log logger.Logger) ([]model.Link, error) {
	log = logger.OrNop(log)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn(ctx, "link file absent", logger.String("path", path))
			return nil, nil
		}
		return nil, fmt.Errorf("%w: links %s: %w", ErrIO, path, err)
	}
	defer f.Close()

	var links []model.Link
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		fields := strings.Split(strings.TrimSpace(sc.Text()), Delimiter)
		if len(fields) < 2 {
			continue
		}
		id := Atoi(fields[0])
		if id <= 0 {
			continue
		}
		links = append(links, model.Link{ProjectID: id, EvaluatorCPF: strings.TrimSpace(fields[1])})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: links %s: %w", ErrIO, path, err)
	}

	log.Debug(ctx, "links loaded", logger.String("path", path), logger.Int("links", len(links)))
	return links, nil
}

// ProjectsFor returns the distinct project ids linked to cpf in first-seen order.
func ProjectsFor(links []model.Link, cpf string) []int {
	cpf = strings.TrimSpace(cpf)
	seen := make(map[int]struct{})
	var ids []int
	for _, l := range links {
		if l.EvaluatorCPF != cpf {
			continue
		}
		if _, ok := seen[l.ProjectID]; ok {
			continue
		}
		seen[l.ProjectID] = struct{}{}
		ids = append(ids, l.ProjectID)
	}
	return ids
}
