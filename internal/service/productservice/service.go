package productservice

import (
	"context"
	"fmt"

	"brasero/internal/domain"
	apperror "brasero/internal/errors"
	"brasero/internal/pkg/logger"
)

// ProductRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type ProductRepository interface {
	Save(ctx context.Context, product domain.Product) (domain.Product, error)
	FindByID(ctx context.Context, id string) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error)
	Update(ctx context.Context, product domain.Product) (domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// Service é o catálogo: consulta pública e CRUD administrativo.
type Service struct {
	repo   ProductRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Produto.
func NewService(repo ProductRepository, log logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

func notFound(id string) error {
	return apperror.NewNotFoundError(fmt.Sprintf("produto com ID %s não existe.", id))
}

// List valida o filtro, aplica a paginação padrão e monta a página.
func (s *Service) List(ctx context.Context, filter domain.ProductFilter) (domain.ProductPage, error) {
	if err := filter.Validate(); err != nil {
		return domain.ProductPage{}, err
	}
	filter = filter.Normalize()

	items, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return domain.ProductPage{}, err
	}
	return domain.NewProductPage(items, total, filter), nil
}

// Get devolve um produto. Para o público, produtos indisponíveis não existem.
func (s *Service) Get(ctx context.Context, id string, includeUnavailable bool) (domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if !p.Available && !includeUnavailable {
		return domain.Product{}, notFound(id)
	}
	return p, nil
}

// Create valida o payload e grava o produto (disponível por padrão).
func (s *Service) Create(ctx context.Context, in domain.ProductInput) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}

	created, err := s.repo.Save(ctx, in.Apply(domain.Product{Available: true}))
	if err != nil {
		return domain.Product{}, fmt.Errorf("falha ao salvar produto no repositório: %w", err)
	}

	s.logger.Info("Produto criado.", map[string]interface{}{"product_id": created.ID, "name": created.Name})
	return created, nil
}

// Update substitui os campos editáveis; disponibilidade omitida é preservada.
func (s *Service) Update(ctx context.Context, id string, in domain.ProductInput) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated, err := s.repo.Update(ctx, in.Apply(current))
	if err != nil {
		return domain.Product{}, err
	}

	s.logger.Info("Produto atualizado.", map[string]interface{}{"product_id": id, "price": updated.Price, "available": updated.Available})
	return updated, nil
}

// Delete remove o produto do catálogo. Pedidos já feitos guardam sua própria cópia.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Produto removido.", map[string]interface{}{"product_id": id})
	return nil
}
