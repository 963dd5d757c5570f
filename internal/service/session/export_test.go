package session

import "github.com/octobees/contact-enricher/internal/service"

func (f *Factory) Normalizer() *service.ContactNormalizer { return f.normalizer }
