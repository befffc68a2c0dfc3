package sqlinline

const QInsertUser = `--sql 0e8d1b00-ff5d-4545-99c2-17134918faec
insert into users (name, email, password_hash, role, created_at, updated_at)
values ($1::text, $2::text, $3::text, $4::text, now(), now())
returning id::text, name, email, password_hash, role, created_at, updated_at;
`

const QSelectUserByID = `--sql 849c0dcf-c127-4e03-a6ee-46fd9a900573
select id::text, name, email, password_hash, role, created_at, updated_at
from users
where id = $1::uuid
limit 1;
`

const QSelectUserByEmail = `--sql 82ac77b4-ee8e-48b4-8e62-112b68fa0056
select id::text, name, email, password_hash, role, created_at, updated_at
from users
where email = $1::text
limit 1;
`

const QUpdateUserRole = `--sql d989b0a1-a047-4866-9aac-0e6c94df1ec0
update users
set role = $2::text, updated_at = now()
where email = $1::text
returning id::text, name, email, password_hash, role, created_at, updated_at;
`
