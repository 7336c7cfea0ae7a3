package sqlinline

// QSchema creates every table the service uses. It is idempotent.
const QSchema = `--sql bb39001d-4baf-46f4-8dcf-f8167e8401c1
create table if not exists renders (
    id uuid primary key,
    session_id text not null,
    brand_id text not null default '',
    asset_type text not null,
    background_url text not null default '',
    final_image_url text not null default '',
    blueprint jsonb not null,
    final_prompt text not null default '',
    width int not null,
    height int not null,
    composited boolean not null default false,
    render_backend text not null default '',
    strategy_source text not null default '',
    created_at timestamptz not null default now()
);
create table if not exists campaigns (
    id uuid primary key,
    user_id text not null default '',
    title text not null default '',
    status text not null default 'pending',
    brand jsonb,
    brand_lock_enabled boolean not null default false,
    design_constraints jsonb,
    logo_image_url text not null default '',
    consistency jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
alter table campaigns add column if not exists consistency jsonb;
create table if not exists campaign_assets (
    id uuid primary key,
    campaign_id uuid not null references campaigns(id) on delete cascade,
    position int not null,
    asset_type text not null,
    intent text not null default '',
    label text not null default '',
    status text not null default 'pending',
    kind text not null default '',
    render_id uuid,
    image_url text not null default '',
    width int not null default 0,
    height int not null default 0,
    objective text not null default '',
    messaging_framework text not null default '',
    emotional_tone text not null default '',
    composited boolean not null default false,
    updated_at timestamptz not null default now()
);
alter table campaign_assets add column if not exists composited boolean not null default false;
create table if not exists brand_memory (
    id bigserial primary key,
    brand_id text not null,
    objective text not null default '',
    messaging_framework text not null default '',
    emotional_tone text not null default '',
    created_at timestamptz not null default now()
);
create index if not exists brand_memory_brand_created_idx on brand_memory (brand_id, created_at desc);
create table if not exists integration_tokens (
    id uuid primary key default gen_random_uuid(),
    provider text not null unique,
    token text not null,
    properties jsonb not null default '{}'::jsonb,
    created_at timestamptz not null default now(),
    updated_at timestamptz not null default now()
);
`
